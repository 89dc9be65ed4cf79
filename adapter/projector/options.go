package projector

// WithKeepID tells whether _id is kept when it is not among the projected
// fields. It is kept by default.
func WithKeepID(keep bool) Option {
	return func(p *Projector) {
		p.keepID = keep
	}
}

// Option configures projector behavior through the functional options pattern.
type Option func(*Projector)
