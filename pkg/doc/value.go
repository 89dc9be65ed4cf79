// Package doc contains the value model stored by gedoc: a tagged [Value]
// union and the ordered [Document] built on top of it.
package doc

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

// Value kinds. The zero Kind is KindNull so the zero Value is null.
const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindDouble
	KindString
	KindBinary
	KindDateTime
	KindObjectID
	KindArray
	KindDocument
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindDouble:   "double",
	KindString:   "string",
	KindBinary:   "binary",
	KindDateTime: "datetime",
	KindObjectID: "objectId",
	KindArray:    "array",
	KindDocument: "document",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ObjectID is the 12 byte identifier used as default document id.
type ObjectID = primitive.ObjectID

// Value is an immutable tagged union. Arrays and documents are shared by
// reference, use [Value.Clone] before mutating them.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
	oid  ObjectID
	arr  []Value
	doc  *Document
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// Int32 returns a 32 bit integer value.
func Int32(i int32) Value { return Value{kind: KindInt32, i: int64(i)} }

// Int64 returns a 64 bit integer value.
func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Double returns a floating point value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Binary returns a binary value. The slice is not copied.
func Binary(b []byte) Value { return Value{kind: KindBinary, b: b} }

// DateTime returns a datetime value truncated to milliseconds.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, i: t.UnixMilli()} }

// DateTimeMillis returns a datetime value from milliseconds since epoch.
func DateTimeMillis(ms int64) Value { return Value{kind: KindDateTime, i: ms} }

// OID returns an ObjectID value.
func OID(id ObjectID) Value { return Value{kind: KindObjectID, oid: id} }

// Array returns an array value holding vs.
func Array(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindArray, arr: vs}
}

// Doc returns a value holding an embedded document. A nil document is
// stored as an empty one.
func Doc(d *Document) Value {
	if d == nil {
		d = New()
	}
	return Value{kind: KindDocument, doc: d}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether v is Int32, Int64 or Double.
func (v Value) IsNumber() bool {
	return v.kind == KindInt32 || v.kind == KindInt64 || v.kind == KindDouble
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.i == 1, v.kind == KindBool }

// AsInt64 returns the integer held by v, for both Int32 and Int64.
func (v Value) AsInt64() (int64, bool) {
	return v.i, v.kind == KindInt32 || v.kind == KindInt64
}

// AsFloat returns any numeric value as float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt32, KindInt64:
		return float64(v.i), true
	case KindDouble:
		return v.f, true
	}
	return 0, false
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBinary returns the bytes held by v.
func (v Value) AsBinary() ([]byte, bool) { return v.b, v.kind == KindBinary }

// AsDateTime returns the milliseconds since epoch held by v.
func (v Value) AsDateTime() (int64, bool) { return v.i, v.kind == KindDateTime }

// AsTime returns the datetime held by v as a [time.Time] in UTC.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind != KindDateTime {
		return time.Time{}, false
	}
	return time.UnixMilli(v.i).UTC(), true
}

// AsObjectID returns the ObjectID held by v.
func (v Value) AsObjectID() (ObjectID, bool) { return v.oid, v.kind == KindObjectID }

// AsArray returns the elements held by v.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsDocument returns the embedded document held by v.
func (v Value) AsDocument() (*Document, bool) { return v.doc, v.kind == KindDocument }

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindBinary:
		v.b = append([]byte(nil), v.b...)
	case KindArray:
		arr := make([]Value, len(v.arr))
		for n, e := range v.arr {
			arr[n] = e.Clone()
		}
		v.arr = arr
	case KindDocument:
		v.doc = v.doc.Clone()
	}
	return v
}

// String implements [fmt.Stringer] with a relaxed JSON-like rendering.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.i == 1))
	case KindInt32, KindInt64:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindBinary:
		sb.WriteString("Binary(")
		sb.WriteString(hex.EncodeToString(v.b))
		sb.WriteByte(')')
	case KindDateTime:
		sb.WriteString("Date(")
		sb.WriteString(time.UnixMilli(v.i).UTC().Format(time.RFC3339Nano))
		sb.WriteByte(')')
	case KindObjectID:
		fmt.Fprintf(sb, "ObjectId(%q)", v.oid.Hex())
	case KindArray:
		sb.WriteByte('[')
		for n, e := range v.arr {
			if n > 0 {
				sb.WriteByte(',')
			}
			e.write(sb)
		}
		sb.WriteByte(']')
	case KindDocument:
		v.doc.write(sb)
	}
}
