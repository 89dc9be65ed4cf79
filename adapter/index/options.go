package index

import "github.com/vinicius-lino-figueiredo/gedoc/domain"

// WithComparer sets the comparer ordering index keys.
func WithComparer(c domain.Comparer) Option {
	return func(i *Index) {
		i.comparer = c
	}
}

// WithManagerComparer sets the comparer given to every index of the
// manager.
func WithManagerComparer(c domain.Comparer) ManagerOption {
	return func(m *Manager) {
		m.comparer = c
	}
}

// Option configures index behavior through the functional options pattern.
type Option func(*Index)

// ManagerOption configures manager behavior through the functional options
// pattern.
type ManagerOption func(*Manager)
