package doc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotNumeric is returned by [Document.IncEmbedded] when either the stored
// value or the increment is not a number.
var ErrNotNumeric = errors.New("value is not numeric")

// SplitPath splits a dotted path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// GetEmbedded returns the value addressed by a dotted path. It reports false
// when a segment is missing or an intermediate value is not a document.
func (d *Document) GetEmbedded(path string) (Value, bool) {
	segs := SplitPath(path)
	cur := d
	for _, seg := range segs[:len(segs)-1] {
		v, ok := cur.Get(seg)
		if !ok {
			return Value{}, false
		}
		if cur, ok = v.AsDocument(); !ok {
			return Value{}, false
		}
	}
	return cur.Get(segs[len(segs)-1])
}

// PutEmbedded stores v at a dotted path, creating missing intermediate
// documents. Intermediate values that are not documents are replaced.
func (d *Document) PutEmbedded(path string, v Value) {
	parent, last := d.parentOf(path, true)
	parent.Set(last, v)
}

// UnsetEmbedded removes the value at a dotted path. Missing intermediates make
// it a no-op.
func (d *Document) UnsetEmbedded(path string) bool {
	parent, last := d.parentOf(path, false)
	if parent == nil {
		return false
	}
	return parent.Unset(last)
}

// IncEmbedded adds amount to the number stored at a dotted path, creating the
// field (and its parents) with amount when missing. The result takes the
// widest representation among Int32, Int64 and Double of both operands.
func (d *Document) IncEmbedded(path string, amount Value) error {
	if !amount.IsNumber() {
		return fmt.Errorf("%w: increment %s for %q", ErrNotNumeric, amount.Kind(), path)
	}
	parent, last := d.parentOf(path, true)
	cur, ok := parent.Get(last)
	if !ok {
		parent.Set(last, amount)
		return nil
	}
	if !cur.IsNumber() {
		return fmt.Errorf("%w: field %q holds %s", ErrNotNumeric, path, cur.Kind())
	}
	parent.Set(last, addNumbers(cur, amount))
	return nil
}

func addNumbers(a, b Value) Value {
	kind := max(a.kind, b.kind)
	switch kind {
	case KindDouble:
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		return Double(x + y)
	case KindInt64:
		return Int64(a.i + b.i)
	default:
		sum := a.i + b.i
		if sum > math.MaxInt32 || sum < math.MinInt32 {
			return Int64(sum)
		}
		return Int32(int32(sum))
	}
}

// parentOf walks to the document holding the last segment of path. With
// create set, missing or non-document intermediates become empty documents,
// otherwise a nil parent is returned for them.
func (d *Document) parentOf(path string, create bool) (*Document, string) {
	segs := SplitPath(path)
	cur := d
	for _, seg := range segs[:len(segs)-1] {
		v, ok := cur.Get(seg)
		next, isDoc := v.AsDocument()
		if !ok || !isDoc {
			if !create {
				return nil, ""
			}
			next = New()
			cur.Set(seg, Doc(next))
		}
		cur = next
	}
	return cur, segs[len(segs)-1]
}
