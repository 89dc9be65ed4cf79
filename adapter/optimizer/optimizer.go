// Package optimizer chooses between full scans and index assisted scans for
// a filter, using fixed selectivity heuristics.
package optimizer

import (
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Fractions of the collection expected to match each kind of predicate.
const (
	IndexedFieldSelectivity = 0.1
	RangeQuerySelectivity   = 0.3
	TextSearchSelectivity   = 0.2
)

// Optimizer plans filters against a fixed snapshot of index metadata.
type Optimizer struct {
	indexes       map[string]domain.IndexDefinition
	textPaths     []string
	documentCount int
}

// NewOptimizer returns an optimizer without indexes over an empty
// collection unless configured otherwise.
func NewOptimizer(options ...Option) *Optimizer {
	o := &Optimizer{
		indexes: map[string]domain.IndexDefinition{},
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// Optimize returns the plan for f. Only bare field predicates and And nodes
// are considered for index use, after double negations are dropped.
func (o *Optimizer) Optimize(f query.Filter) Plan {
	switch f := query.Normalize(f).(type) {
	case query.And:
		return o.optimizeConjunction(f)
	case query.FieldFilter:
		return o.optimizeConjunction(query.And{Filters: []query.Filter{f}})
	}
	return o.fullScan(f)
}

func (o *Optimizer) fullScan(f query.Filter) FullScan {
	return FullScan{Filter: f, DocumentCount: o.documentCount}
}

func (o *Optimizer) optimizeConjunction(f query.And) Plan {
	conjuncts := query.Conjuncts(f)

	bestIndex, bestText := -1, -1
	bestExpected := 0
	for n, c := range conjuncts {
		switch c := c.(type) {
		case query.Eq, query.Comp, query.In:
			ff := c.(query.FieldFilter)
			if _, ok := o.indexes[ff.FieldPath()]; !ok {
				continue
			}
			expected := o.estimateResults(ff)
			if bestIndex < 0 || expected < bestExpected {
				bestIndex, bestExpected = n, expected
			}
		case query.FieldText:
			if bestText < 0 && slices.Contains(o.textPaths, c.Path) {
				bestText = n
			}
		}
	}

	switch {
	case bestIndex >= 0:
		ff := conjuncts[bestIndex].(query.FieldFilter)
		return IndexScan{
			Index:           o.indexes[ff.FieldPath()],
			IndexedFilter:   ff,
			RemainingFilter: o.remaining(conjuncts, bestIndex),
			ExpectedResults: bestExpected,
		}
	case bestText >= 0:
		return TextIndexScan{
			Fields:          slices.Clone(o.textPaths),
			TextFilter:      conjuncts[bestText].(query.FieldText),
			RemainingFilter: o.remaining(conjuncts, bestText),
			ExpectedResults: o.estimateTextResults(),
		}
	}

	if len(f.Filters) == 1 {
		return o.fullScan(f.Filters[0])
	}
	return o.fullScan(f)
}

func (o *Optimizer) remaining(conjuncts []query.Filter, chosen int) query.Filter {
	rest := make([]query.Filter, 0, len(conjuncts)-1)
	rest = append(rest, conjuncts[:chosen]...)
	rest = append(rest, conjuncts[chosen+1:]...)
	return query.AndOf(rest...)
}

func (o *Optimizer) estimateResults(f query.FieldFilter) int {
	n := o.documentCount
	switch f := f.(type) {
	case query.Eq:
		if o.indexes[f.Path].Kind == domain.IndexUnique {
			return 1
		}
		return max(1, int(float64(n)*IndexedFieldSelectivity))
	case query.In:
		perValue := int(float64(n) * IndexedFieldSelectivity)
		return min(len(f.Values)*perValue, n)
	case query.Comp:
		return max(1, int(float64(n)*RangeQuerySelectivity))
	}
	return n
}

func (o *Optimizer) estimateTextResults() int {
	return max(1, int(float64(o.documentCount)*TextSearchSelectivity))
}

// Explain describes p.
func (o *Optimizer) Explain(p Plan) domain.Explanation {
	switch p := p.(type) {
	case IndexScan:
		return domain.Explanation{
			PlanType:      domain.PlanIndexScan,
			IndexesUsed:   []string{p.Index.Name},
			EstimatedCost: p.EstimatedCost(),
			Optimized:     true,
			Details: map[string]any{
				"indexName":          p.Index.Name,
				"indexedField":       p.IndexedFilter.FieldPath(),
				"expectedResults":    p.ExpectedResults,
				"hasRemainingFilter": p.RemainingFilter != nil,
			},
		}
	case TextIndexScan:
		return domain.Explanation{
			PlanType:      domain.PlanTextIndexScan,
			IndexesUsed:   slices.Clone(p.Fields),
			EstimatedCost: p.EstimatedCost(),
			Optimized:     true,
			Details: map[string]any{
				"indexedFields":      slices.Clone(p.Fields),
				"textField":          p.TextFilter.Path,
				"searchTerm":         p.TextFilter.Term,
				"expectedResults":    p.ExpectedResults,
				"hasRemainingFilter": p.RemainingFilter != nil,
			},
		}
	case CompositePlan:
		used := make([]string, 0, len(p.IndexScans))
		for _, s := range p.IndexScans {
			used = append(used, s.Index.Name)
		}
		for _, s := range p.TextScans {
			used = append(used, s.Fields...)
		}
		return domain.Explanation{
			PlanType:      domain.PlanComposite,
			IndexesUsed:   used,
			EstimatedCost: p.EstimatedCost(),
			Optimized:     true,
			Details: map[string]any{
				"indexScans":         len(p.IndexScans),
				"textScans":          len(p.TextScans),
				"expectedResults":    p.ExpectedResults,
				"hasRemainingFilter": p.RemainingFilter != nil,
			},
		}
	case FullScan:
		return domain.Explanation{
			PlanType:      domain.PlanFullScan,
			IndexesUsed:   []string{},
			EstimatedCost: p.EstimatedCost(),
			Optimized:     false,
			Details: map[string]any{
				"documentCount": p.DocumentCount,
				"reason":        "No suitable index found",
			},
		}
	}
	return domain.Explanation{}
}
