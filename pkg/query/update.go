package query

import "github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"

// Update is an ordered list of operations. With Upsert set, a document is
// created when nothing matches.
type Update struct {
	Ops    []Op
	Upsert bool
}

// Op is a single update operation. The set of implementations is closed.
type Op interface {
	OpPath() string
	op()
}

// SetOp stores Value at Path.
type SetOp struct {
	Path  string
	Value doc.Value
}

// UnsetOp removes Path.
type UnsetOp struct {
	Path string
}

// IncOp adds Amount to the number at Path.
type IncOp struct {
	Path   string
	Amount doc.Value
}

// SetOnInsertOp stores Value at Path only when the document is being created
// by an upsert.
type SetOnInsertOp struct {
	Path  string
	Value doc.Value
}

func (SetOp) op()         {}
func (UnsetOp) op()       {}
func (IncOp) op()         {}
func (SetOnInsertOp) op() {}

// OpPath implements [Op].
func (o SetOp) OpPath() string { return o.Path }

// OpPath implements [Op].
func (o UnsetOp) OpPath() string { return o.Path }

// OpPath implements [Op].
func (o IncOp) OpPath() string { return o.Path }

// OpPath implements [Op].
func (o SetOnInsertOp) OpPath() string { return o.Path }

// Updates builds an Update from ops.
func Updates(ops ...Op) Update {
	return Update{Ops: ops}
}

// WithUpsert returns a copy of u with Upsert set.
func (u Update) WithUpsert() Update {
	u.Upsert = true
	return u
}

// UpsertUpdates turns every equality reachable from f through And nodes only
// into a [SetOp], in traversal order.
func UpsertUpdates(f Filter) []Op {
	var ops []Op
	var walk func(Filter)
	walk = func(f Filter) {
		switch f := f.(type) {
		case Eq:
			ops = append(ops, SetOp(f))
		case And:
			for _, sub := range f.Filters {
				walk(sub)
			}
		}
	}
	walk(f)
	return ops
}
