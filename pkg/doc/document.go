package doc

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// IDField is the name of the document identifier field.
const IDField = "_id"

// E is a single key/value pair used to build documents.
type E struct {
	Key   string
	Value Value
}

// Document is an ordered mapping of field names to values. The zero value is
// not usable, create documents with [New].
type Document struct {
	keys   []string
	values map[string]Value
}

// New returns a document holding elems in the given order. Repeated keys
// keep the first position and the last value.
func New(elems ...E) *Document {
	d := &Document{
		keys:   make([]string, 0, len(elems)),
		values: make(map[string]Value, len(elems)),
	}
	for _, e := range elems {
		d.Set(e.Key, e.Value)
	}
	return d
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns the field names in order.
func (d *Document) Keys() []string { return slices.Clone(d.keys) }

// Get returns the value of a top-level field.
func (d *Document) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether a top-level field exists.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Set stores a top-level field, keeping its position if it already exists.
func (d *Document) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Unset removes a top-level field and reports whether it existed.
func (d *Document) Unset(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
	return true
}

// Iter iterates the fields in order.
func (d *Document) Iter() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// ID returns the document identifier.
func (d *Document) ID() (Value, bool) { return d.Get(IDField) }

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{
		keys:   slices.Clone(d.keys),
		values: make(map[string]Value, len(d.values)),
	}
	for k, v := range d.values {
		c.values[k] = v.Clone()
	}
	return c
}

// String implements [fmt.Stringer].
func (d *Document) String() string {
	var sb strings.Builder
	d.write(&sb)
	return sb.String()
}

func (d *Document) write(sb *strings.Builder) {
	sb.WriteByte('{')
	for n, k := range d.keys {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteByte(':')
		d.values[k].write(sb)
	}
	sb.WriteByte('}')
}
