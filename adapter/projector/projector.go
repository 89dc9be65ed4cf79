// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Projector implements [domain.Projector].
type Projector struct {
	keepID bool
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(opts ...Option) domain.Projector {
	p := Projector{keepID: true}
	for _, opt := range opts {
		opt(&p)
	}
	return &p
}

// Project implements [domain.Projector]. Paths missing from a document are
// skipped and nested paths recreate their parents.
func (p *Projector) Project(docs []*doc.Document, fields []string) []*doc.Document {
	if len(fields) == 0 {
		return docs
	}
	res := make([]*doc.Document, len(docs))
	for n, d := range docs {
		res[n] = p.projectDoc(d, fields)
	}
	return res
}

func (p *Projector) projectDoc(d *doc.Document, fields []string) *doc.Document {
	res := doc.New()
	if id, ok := d.ID(); ok && p.keepID {
		res.Set(doc.IDField, id)
	}
	for _, field := range fields {
		if field == doc.IDField && res.Has(doc.IDField) {
			continue
		}
		v, ok := d.GetEmbedded(field)
		if !ok {
			continue
		}
		res.PutEmbedded(field, v.Clone())
	}
	return res
}
