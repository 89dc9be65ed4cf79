// Package index maintains the regular and text indexes of a collection.
//
// Indexes never hold documents, only the slot numbers the collection uses to
// address them, so lookups return slots in insertion order.
package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Bound limits a range lookup.
type Bound struct {
	Value        doc.Value
	IncludeEqual bool
}

// Index maps the value found at a path to the slots holding it.
type Index struct {
	def domain.IndexDefinition
	// Exported to allow testing.
	Tree        bst.BST[doc.Value, int]
	comparer    domain.Comparer
	bstComparer bst.Comparer[doc.Value, int]
}

// NewIndex returns an empty index for def.
func NewIndex(def domain.IndexDefinition, options ...Option) *Index {
	i := &Index{
		def:      def,
		comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(i)
	}
	i.bstComparer = NewBSTComparer(i.comparer)
	i.Reset()
	return i
}

// Definition returns the definition the index was built from.
func (i *Index) Definition() domain.IndexDefinition {
	return i.def
}

// Unique reports whether the index rejects repeated values.
func (i *Index) Unique() bool {
	return i.def.Kind == domain.IndexUnique
}

// Reset drops every entry.
func (i *Index) Reset() {
	i.Tree = avl.NewBST(i.Unique(), 8, i.bstComparer)
}

// Key returns the value indexed for d. Documents without the field are not
// indexed.
func (i *Index) Key(d *doc.Document) (doc.Value, bool) {
	return d.GetEmbedded(i.def.Path)
}

// Insert adds slot under key. Unique violations are reported as
// [domain.ErrConstraintViolated].
func (i *Index) Insert(slot int, key doc.Value) error {
	if err := i.Tree.Insert(key, slot); err != nil {
		if e := new(bst.ErrUniqueViolated); errors.As(err, e) {
			return fmt.Errorf("%w: index %q value %s", domain.ErrConstraintViolated, i.def.Name, key)
		}
		return err
	}
	return nil
}

// Remove deletes slot from the key bucket.
func (i *Index) Remove(slot int, key doc.Value) error {
	return i.Tree.Delete(key, &slot)
}

// Matching returns the slots whose value equals any of values.
func (i *Index) Matching(values ...doc.Value) ([]int, error) {
	var res []int
	for _, v := range values {
		found, err := i.Tree.Search(v)
		if err != nil {
			return nil, err
		}
		if found == nil {
			continue
		}
		res = append(res, found.Values()...)
	}
	return sortSlots(res), nil
}

// Between returns the slots whose value lies within the bounds. A nil bound
// leaves that side open.
func (i *Index) Between(lower, upper *Bound) ([]int, error) {
	var qry bst.Query[doc.Value]
	if lower != nil {
		qry.GreaterThan = &bst.Bound[doc.Value]{Value: lower.Value, IncludeEqual: lower.IncludeEqual}
	}
	if upper != nil {
		qry.LowerThan = &bst.Bound[doc.Value]{Value: upper.Value, IncludeEqual: upper.IncludeEqual}
	}

	var res []int
	for slot, err := range i.Tree.Query(qry) {
		if err != nil {
			return nil, err
		}
		res = append(res, slot)
	}
	return sortSlots(res), nil
}

// NumberOfKeys returns the number of distinct indexed values.
func (i *Index) NumberOfKeys() int {
	return i.Tree.GetNumberOfKeys()
}

func sortSlots(slots []int) []int {
	slices.Sort(slots)
	return slices.Compact(slots)
}
