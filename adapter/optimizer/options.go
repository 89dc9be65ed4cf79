package optimizer

import (
	"maps"
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// WithIndexes sets the regular indexes by path.
func WithIndexes(defs map[string]domain.IndexDefinition) Option {
	return func(o *Optimizer) {
		o.indexes = maps.Clone(defs)
	}
}

// WithTextPaths sets the text indexed paths.
func WithTextPaths(paths ...string) Option {
	return func(o *Optimizer) {
		o.textPaths = slices.Clone(paths)
	}
}

// WithDocumentCount sets the collection size used by the estimates.
func WithDocumentCount(n int) Option {
	return func(o *Optimizer) {
		o.documentCount = n
	}
}

// Option configures optimizer behavior through the functional options
// pattern.
type Option func(*Optimizer)
