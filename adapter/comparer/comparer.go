// Package comparer contains the default [domain.Comparer] implementation.
package comparer

import (
	"bytes"
	"cmp"
	"math"
	"math/big"
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// rank follows the canonical BSON sort order of types. Numbers share a rank
// so that they compare by value.
var rank = [...]int{
	doc.KindNull:     0,
	doc.KindInt32:    1,
	doc.KindInt64:    1,
	doc.KindDouble:   1,
	doc.KindString:   2,
	doc.KindDocument: 3,
	doc.KindArray:    4,
	doc.KindBinary:   5,
	doc.KindObjectID: 6,
	doc.KindBool:     7,
	doc.KindDateTime: 8,
}

// Comparer implements [domain.Comparer].
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Equal implements [domain.Comparer].
func (c *Comparer) Equal(a, b doc.Value) bool {
	return c.Compare(a, b) == 0
}

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a, b doc.Value) int {
	ra, rb := rank[a.Kind()], rank[b.Kind()]
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch a.Kind() {
	case doc.KindNull:
		return 0
	case doc.KindInt32, doc.KindInt64, doc.KindDouble:
		return c.compareNumbers(a, b)
	case doc.KindString:
		as, _ := a.AsString()
		bs, _ := b.AsString()
		return cmp.Compare(as, bs)
	case doc.KindDocument:
		ad, _ := a.AsDocument()
		bd, _ := b.AsDocument()
		return c.compareDoc(ad, bd)
	case doc.KindArray:
		aa, _ := a.AsArray()
		ba, _ := b.AsArray()
		return c.compareArray(aa, ba)
	case doc.KindBinary:
		ab, _ := a.AsBinary()
		bb, _ := b.AsBinary()
		return bytes.Compare(ab, bb)
	case doc.KindObjectID:
		ao, _ := a.AsObjectID()
		bo, _ := b.AsObjectID()
		return bytes.Compare(ao[:], bo[:])
	case doc.KindBool:
		ab, _ := a.AsBool()
		bb, _ := b.AsBool()
		return c.compareBool(ab, bb)
	case doc.KindDateTime:
		at, _ := a.AsDateTime()
		bt, _ := b.AsDateTime()
		return cmp.Compare(at, bt)
	}
	return 0
}

func (c *Comparer) compareNumbers(a, b doc.Value) int {
	if a.Kind() != doc.KindDouble && b.Kind() != doc.KindDouble {
		ai, _ := a.AsInt64()
		bi, _ := b.AsInt64()
		return cmp.Compare(ai, bi)
	}

	af, _ := a.AsFloat()
	bf, _ := b.AsFloat()

	// NaN sorts below every other number and equals itself.
	if an, bn := math.IsNaN(af), math.IsNaN(bf); an || bn {
		switch {
		case an && bn:
			return 0
		case an:
			return -1
		default:
			return 1
		}
	}

	// big.Float keeps int64 values exact against float64 ones.
	return c.asNumber(a).Cmp(c.asNumber(b))
}

func (c *Comparer) asNumber(v doc.Value) *big.Float {
	r := big.NewFloat(0)
	if i, ok := v.AsInt64(); ok {
		return r.SetInt64(i)
	}
	f, _ := v.AsFloat()
	return r.SetFloat64(f)
}

func (c *Comparer) compareArray(a, b []doc.Value) int {
	for i := range min(len(a), len(b)) {
		if comp := c.Compare(a[i], b[i]); comp != 0 {
			return comp
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b))
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

// compareDoc ignores field order: fields are compared pairwise in key order,
// key first and value second.
func (c *Comparer) compareDoc(a, b *doc.Document) int {
	aKeys := a.Keys()
	bKeys := b.Keys()
	slices.Sort(aKeys)
	slices.Sort(bKeys)

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp
		}
		av, _ := a.Get(aKeys[i])
		bv, _ := b.Get(bKeys[i])
		if comp := c.Compare(av, bv); comp != 0 {
			return comp
		}
	}

	return cmp.Compare(len(aKeys), len(bKeys))
}
