package query

// Normalize returns an equivalent filter where nested And nodes are merged
// into their And parent, nested Or nodes into their Or parent and double
// negations are removed. It never mutates f and Normalize(Normalize(f)) is
// equal to Normalize(f).
func Normalize(f Filter) Filter {
	switch f := f.(type) {
	case And:
		return And{Filters: flatten(f.Filters, func(f Filter) ([]Filter, bool) {
			a, ok := f.(And)
			return a.Filters, ok
		})}
	case Or:
		return Or{Filters: flatten(f.Filters, func(f Filter) ([]Filter, bool) {
			o, ok := f.(Or)
			return o.Filters, ok
		})}
	case Not:
		inner := Normalize(f.Filter)
		if n, ok := inner.(Not); ok {
			return n.Filter
		}
		return Not{Filter: inner}
	}
	return f
}

func flatten(filters []Filter, same func(Filter) ([]Filter, bool)) []Filter {
	res := make([]Filter, 0, len(filters))
	for _, sub := range filters {
		sub = Normalize(sub)
		if children, ok := same(sub); ok {
			res = append(res, children...)
			continue
		}
		res = append(res, sub)
	}
	return res
}

// Conjuncts returns the operands of f after recursively merging nested And
// nodes. A filter that is not an And is its own single conjunct.
func Conjuncts(f Filter) []Filter {
	a, ok := f.(And)
	if !ok {
		return []Filter{f}
	}
	res := make([]Filter, 0, len(a.Filters))
	for _, sub := range a.Filters {
		if _, isAnd := sub.(And); isAnd {
			res = append(res, Conjuncts(sub)...)
			continue
		}
		res = append(res, sub)
	}
	return res
}

// AndOf joins filters with And, returning nil for no filter and the filter
// itself for a single one.
func AndOf(filters ...Filter) Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return And{Filters: filters}
}
