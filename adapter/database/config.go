package database

import (
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/collection"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/config"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// NewFromConfig returns a database configured by cfg. Options are applied
// after the ones derived from cfg.
func NewFromConfig(cfg *config.Config, options ...Option) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	compression, ok := persistence.ParseCompression(cfg.Compression)
	if !ok {
		return nil, domain.ErrInvalidArgument{Field: "compression", Value: cfg.Compression, Reason: "unknown compression"}
	}
	p, err := persistence.NewPersistence(persistence.WithCompression(compression))
	if err != nil {
		return nil, err
	}

	kind, ok := idgenerator.ParseKind(cfg.IDGenerator)
	if !ok {
		return nil, domain.ErrInvalidArgument{Field: "idGenerator", Value: cfg.IDGenerator, Reason: "unknown id generator"}
	}

	base := []Option{
		WithPath(cfg.Path),
		WithPersistence(p),
		WithSchema(cfg.Schema()),
		WithCollectionOptions(collection.WithIDGenerator(idgenerator.NewIDGenerator(idgenerator.WithKind(kind)))),
	}
	return NewDatabase(append(base, options...)...)
}
