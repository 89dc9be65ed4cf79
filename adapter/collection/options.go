package collection

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// WithLogger sets the logger. Every record carries the collection name.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		c.logger = l
	}
}

// WithMetrics sets the collectors updated by every operation. Nil disables
// metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Collection) {
		c.metrics = m
	}
}

// WithComparer sets the comparer shared by indexes, filters and sorting.
func WithComparer(cmp domain.Comparer) Option {
	return func(c *Collection) {
		c.comparer = cmp
	}
}

// WithMatcher sets the matcher used to evaluate filters.
func WithMatcher(m domain.Matcher) Option {
	return func(c *Collection) {
		c.matcher = m
	}
}

// WithModifier sets the modifier used to apply updates.
func WithModifier(m domain.Modifier) Option {
	return func(c *Collection) {
		c.modifier = m
	}
}

// WithQuerier sets the querier that sorts, slices and projects results.
func WithQuerier(q domain.Querier) Option {
	return func(c *Collection) {
		c.querier = q
	}
}

// WithIDGenerator sets the generator of missing _id values.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(c *Collection) {
		c.idGenerator = g
	}
}

// WithPersistence sets the codec used by Dump and Load.
func WithPersistence(p domain.Persistence) Option {
	return func(c *Collection) {
		c.persistence = p
	}
}

// WithTimeGetter sets the clock used to time operations.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(c *Collection) {
		c.timeGetter = t
	}
}

// WithIndexes sets the initial index configuration.
func WithIndexes(l domain.IndexList) Option {
	return func(c *Collection) {
		c.indexList = l
	}
}

// Option configures collection behavior through the functional options
// pattern.
type Option func(*Collection)
