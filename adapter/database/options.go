package database

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/collection"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// WithPath sets the file used by Open and Close.
func WithPath(p string) Option {
	return func(d *Database) {
		d.path = p
	}
}

// WithPersistence sets the codec and storage of snapshots.
func WithPersistence(p domain.Persistence) Option {
	return func(d *Database) {
		d.persistence = p
	}
}

// WithSchema sets the index configuration applied to collections by name
// whenever they are created or loaded.
func WithSchema(s map[string]domain.IndexList) Option {
	return func(d *Database) {
		d.schema = s
	}
}

// WithLogger sets the logger of the database and its collections.
func WithLogger(l *slog.Logger) Option {
	return func(d *Database) {
		d.logger = l
	}
}

// WithMetrics sets the collectors shared by every collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Database) {
		d.metrics = m
	}
}

// WithCollectionOptions sets options given to every new collection.
func WithCollectionOptions(options ...collection.Option) Option {
	return func(d *Database) {
		d.collectionOptions = append(d.collectionOptions, options...)
	}
}

// Option configures database behavior through the functional options
// pattern.
type Option func(*Database)
