package index

import (
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

type bstComparer struct {
	comparer domain.Comparer
}

// NewBSTComparer adapts a [domain.Comparer] to the tree used by [Index]. Keys
// are field values and values are document slots.
func NewBSTComparer(comparer domain.Comparer) bst.Comparer[doc.Value, int] {
	return &bstComparer{
		comparer: comparer,
	}
}

// CompareKeys implements bst.Comparer.
func (bc *bstComparer) CompareKeys(a doc.Value, b doc.Value) (int, error) {
	return bc.comparer.Compare(a, b), nil
}

// CompareValues implements bst.Comparer.
func (bc *bstComparer) CompareValues(a int, b int) (bool, error) {
	return a == b, nil
}
