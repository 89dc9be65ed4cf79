// Package modifier contains a [domain.Modifier] implementation applying
// [query.Update] operations to documents.
package modifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Modifier implements [domain.Modifier].
type Modifier struct {
	comparer domain.Comparer
}

// NewModifier returns a new implementation of [domain.Modifier].
func NewModifier(options ...Option) domain.Modifier {
	m := &Modifier{
		comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Modify implements [domain.Modifier].
func (m *Modifier) Modify(d *doc.Document, u query.Update) (*doc.Document, error) {
	if err := m.Validate(u); err != nil {
		return nil, err
	}

	res := d.Clone()
	for _, op := range u.Ops {
		if _, ok := op.(query.SetOnInsertOp); ok {
			continue
		}
		if err := m.apply(res, op); err != nil {
			return nil, err
		}
	}

	oldID, hadID := d.ID()
	newID, hasID := res.ID()
	if hadID && (!hasID || !m.comparer.Equal(oldID, newID)) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCannotModifyID, oldID)
	}
	return res, nil
}

// Upsert implements [domain.Modifier].
func (m *Modifier) Upsert(f query.Filter, u query.Update) (*doc.Document, error) {
	if err := m.Validate(u); err != nil {
		return nil, err
	}

	res := doc.New()
	for _, op := range query.UpsertUpdates(f) {
		if err := m.apply(res, op); err != nil {
			return nil, err
		}
	}
	for _, op := range u.Ops {
		if err := m.apply(res, op); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Validate implements [domain.Modifier].
func (m *Modifier) Validate(u query.Update) error {
	for _, op := range u.Ops {
		if op == nil {
			return domain.ErrInvalidArgument{Reason: "nil update operation"}
		}
		path := op.OpPath()
		if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
			return domain.ErrInvalidArgument{Field: path, Operator: m.opName(op), Reason: "invalid field path"}
		}
		if inc, ok := op.(query.IncOp); ok && !inc.Amount.IsNumber() {
			return domain.ErrInvalidArgument{
				Field:    path,
				Operator: "inc",
				Value:    inc.Amount.String(),
				Reason:   "increment must be a number",
			}
		}
	}
	return nil
}

func (m *Modifier) apply(d *doc.Document, op query.Op) error {
	switch op := op.(type) {
	case query.SetOp:
		d.PutEmbedded(op.Path, op.Value.Clone())
	case query.SetOnInsertOp:
		d.PutEmbedded(op.Path, op.Value.Clone())
	case query.UnsetOp:
		d.UnsetEmbedded(op.Path)
	case query.IncOp:
		if err := d.IncEmbedded(op.Path, op.Amount); err != nil {
			if errors.Is(err, doc.ErrNotNumeric) {
				return domain.ErrInvalidArgument{Field: op.Path, Operator: "inc", Value: op.Amount.String(), Reason: err.Error()}
			}
			return err
		}
	default:
		return domain.ErrInvalidArgument{Operator: fmt.Sprintf("%T", op), Reason: "unknown update operation"}
	}
	return nil
}

func (m *Modifier) opName(op query.Op) string {
	switch op.(type) {
	case query.SetOp:
		return "set"
	case query.UnsetOp:
		return "unset"
	case query.IncOp:
		return "inc"
	case query.SetOnInsertOp:
		return "setOnInsert"
	}
	return fmt.Sprintf("%T", op)
}
