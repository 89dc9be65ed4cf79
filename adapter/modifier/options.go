package modifier

import "github.com/vinicius-lino-figueiredo/gedoc/domain"

// WithComparer sets the comparer used to detect _id changes.
func WithComparer(c domain.Comparer) Option {
	return func(m *Modifier) {
		m.comparer = c
	}
}

// Option configures modifier behavior through the functional options
// pattern.
type Option func(*Modifier)
