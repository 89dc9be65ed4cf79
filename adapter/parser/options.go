package parser

// WithPermittedFields restricts filters to fields, after replacements are
// applied.
func WithPermittedFields(fields ...string) Option {
	return func(p *Parser) {
		if p.permittedFields == nil {
			p.permittedFields = make(map[string]struct{}, len(fields))
		}
		for _, f := range fields {
			p.permittedFields[f] = struct{}{}
		}
	}
}

// WithPermittedOperations restricts filters to the given operators.
func WithPermittedOperations(ops ...string) Option {
	return func(p *Parser) {
		if p.permittedOperations == nil {
			p.permittedOperations = make(map[string]struct{}, len(ops))
		}
		for _, op := range ops {
			p.permittedOperations[op] = struct{}{}
		}
	}
}

// WithReplacement reads field from as field to.
func WithReplacement(from, to string) Option {
	return func(p *Parser) {
		p.replacements[from] = to
	}
}

// WithTransformer applies t to every value parsed for field. Arrays are
// transformed element by element.
func WithTransformer(field string, t Transformer) Option {
	return func(p *Parser) {
		p.transformers[field] = t
	}
}

// Option configures parser behavior through the functional options pattern.
type Option func(*Parser)
