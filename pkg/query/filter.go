// Package query contains the filter and update expression trees understood by
// gedoc collections.
//
// Filters and updates are closed sets of plain structs. Evaluation, index
// planning and update application live in separate packages and inspect the
// trees with type switches.
package query

import "github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"

// Filter is a predicate over documents. The set of implementations is closed.
type Filter interface {
	filter()
}

// FieldFilter is a [Filter] bound to a single dotted field path.
type FieldFilter interface {
	Filter
	FieldPath() string
}

// CompOp is the operator of a [Comp] filter.
type CompOp uint8

// Comparison operators.
const (
	GT CompOp = iota + 1
	GTE
	LT
	LTE
)

func (o CompOp) String() string {
	switch o {
	case GT:
		return "gt"
	case GTE:
		return "gte"
	case LT:
		return "lt"
	case LTE:
		return "lte"
	}
	return "unknown"
}

// ArrayOp is the operator of an [ArrComp] filter.
type ArrayOp uint8

// Array set operators.
const (
	ArrAny ArrayOp = iota + 1
	ArrNone
	ArrAll
	ArrSet
)

func (o ArrayOp) String() string {
	switch o {
	case ArrAny:
		return "any"
	case ArrNone:
		return "none"
	case ArrAll:
		return "all"
	case ArrSet:
		return "set"
	}
	return "unknown"
}

// And matches when every filter matches. An empty And matches everything.
type And struct{ Filters []Filter }

// Or matches when any filter matches. An empty Or matches nothing.
type Or struct{ Filters []Filter }

// Not negates a filter.
type Not struct{ Filter Filter }

// Native carries an opaque filter meant for an external backend. It never
// matches in-process.
type Native struct{ Value any }

// Text is a top-level text search over Fields, or over every top-level
// string field when Fields is empty.
type Text struct {
	Term   string
	Fields []string
}

// Eq matches when the field equals Value. Arrays compare as whole values.
type Eq struct {
	Path  string
	Value doc.Value
}

// Ne matches when the field is absent or differs from Value.
type Ne struct {
	Path  string
	Value doc.Value
}

// In matches when the field equals one of Values.
type In struct {
	Path   string
	Values []doc.Value
}

// Nin matches when the field is absent or equals none of Values.
type Nin struct {
	Path   string
	Values []doc.Value
}

// Comp orders the field against Value. Absent fields never match.
type Comp struct {
	Path  string
	Op    CompOp
	Value doc.Value
}

// ArrCont matches array fields holding Value.
type ArrCont struct {
	Path  string
	Value doc.Value
}

// ArrNotCont matches when the field is not an array holding Value.
type ArrNotCont struct {
	Path  string
	Value doc.Value
}

// ArrSize matches array fields with exactly Size elements.
type ArrSize struct {
	Path string
	Size int
}

// ArrComp compares the elements of an array field with Values as sets.
type ArrComp struct {
	Path   string
	Op     ArrayOp
	Values []doc.Value
}

// Regex matches string fields containing Pattern. Options may hold the flags
// i, m, s and x.
type Regex struct {
	Path    string
	Pattern string
	Options string
}

// FieldText matches string fields holding every word of Term.
type FieldText struct {
	Path string
	Term string
}

func (And) filter()        {}
func (Or) filter()         {}
func (Not) filter()        {}
func (Native) filter()     {}
func (Text) filter()       {}
func (Eq) filter()         {}
func (Ne) filter()         {}
func (In) filter()         {}
func (Nin) filter()        {}
func (Comp) filter()       {}
func (ArrCont) filter()    {}
func (ArrNotCont) filter() {}
func (ArrSize) filter()    {}
func (ArrComp) filter()    {}
func (Regex) filter()      {}
func (FieldText) filter()  {}

// FieldPath implements [FieldFilter].
func (f Eq) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f Ne) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f In) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f Nin) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f Comp) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f ArrCont) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f ArrNotCont) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f ArrSize) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f ArrComp) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f Regex) FieldPath() string { return f.Path }

// FieldPath implements [FieldFilter].
func (f FieldText) FieldPath() string { return f.Path }

// ByID matches the document whose _id equals id.
func ByID(id doc.Value) Filter {
	return Eq{Path: doc.IDField, Value: id}
}

// IDs matches documents whose _id is one of ids.
func IDs(ids ...doc.Value) Filter {
	return In{Path: doc.IDField, Values: ids}
}
