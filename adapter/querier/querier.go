// Package querier contains the default [domain.Querier] implementation.
package querier

import (
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/projector"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Querier implements [domain.Querier].
type Querier struct {
	cmpr domain.Comparer
	proj domain.Projector
}

// NewQuerier returns a new implementation of [domain.Querier].
func NewQuerier(opts ...Option) domain.Querier {
	q := Querier{
		cmpr: comparer.NewComparer(),
	}
	for _, opt := range opts {
		opt(&q)
	}
	if q.proj == nil {
		q.proj = projector.NewProjector()
	}
	return &q
}

// Query implements [domain.Querier]. The input slice is never reordered.
func (q *Querier) Query(docs []*doc.Document, opts domain.FindOptions) []*doc.Document {
	res := docs
	if len(opts.Sort) > 0 {
		res = q.sort(docs, opts.Sort)
	}
	res = q.skipAndLimit(res, opts.Skip, opts.Limit)
	return q.proj.Project(res, opts.Fields)
}

func (q *Querier) sort(data []*doc.Document, keys []domain.SortKey) []*doc.Document {
	res := slices.Clone(data)
	slices.SortStableFunc(res, func(a, b *doc.Document) int {
		for _, key := range keys {
			if comp := q.compareByKey(a, b, key); comp != 0 {
				return comp
			}
		}
		return 0
	})
	return res
}

// compareByKey places absent values below every present value, null
// included.
func (q *Querier) compareByKey(a, b *doc.Document, key domain.SortKey) int {
	va, okA := a.GetEmbedded(key.Path)
	vb, okB := b.GetEmbedded(key.Path)

	var comp int
	switch {
	case !okA && !okB:
		comp = 0
	case !okA:
		comp = -1
	case !okB:
		comp = 1
	default:
		comp = q.cmpr.Compare(va, vb)
	}
	if key.Descending {
		return -comp
	}
	return comp
}

func (q *Querier) skipAndLimit(data []*doc.Document, skip, limit int) []*doc.Document {
	length := len(data)

	skip = max(skip, 0)
	skip = min(skip, length)

	end := length
	if limit > 0 {
		end = min(skip+limit, length)
	}
	return data[skip:end]
}
