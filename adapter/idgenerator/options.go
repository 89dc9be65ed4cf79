package idgenerator

import "io"

// WithKind sets the identifier format.
func WithKind(k Kind) Option {
	return func(igo *IDGenerator) {
		igo.kind = k
	}
}

// WithReader sets the reader that will provide random bytes for UUIDs.
func WithReader(r io.Reader) Option {
	return func(igo *IDGenerator) {
		igo.reader = r
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*IDGenerator)
