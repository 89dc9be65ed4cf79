// Package data converts Go values into documents at the API boundary.
package data

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// TagName is the struct tag read for field names and the omitempty and
// omitzero flags.
const TagName = "gedoc"

// NewDocument converts maps with string keys, structs and pointers to them
// into a document. Struct fields keep their declaration order and map keys
// are sorted. A nil input yields an empty document.
func NewDocument(in any) (*doc.Document, error) {
	switch t := in.(type) {
	case nil:
		return doc.New(), nil
	case *doc.Document:
		return t.Clone(), nil
	}

	v, err := ValueOf(in)
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case doc.KindNull:
		return doc.New(), nil
	case doc.KindDocument:
		d, _ := v.AsDocument()
		return d, nil
	}
	return nil, domain.ErrDocumentType{Reason: fmt.Sprintf("expected map or struct, got %T", in)}
}

// ValueOf converts a Go value into a [doc.Value].
func ValueOf(in any) (doc.Value, error) {
	if in == nil {
		return doc.Null(), nil
	}
	return parseReflect(goreflect.ValueNoEscapeOf(in))
}

func parseSimple(v any) (doc.Value, bool) {
	switch t := v.(type) {
	case doc.Value:
		return t.Clone(), true
	case *doc.Document:
		if t == nil {
			return doc.Null(), true
		}
		return doc.Doc(t.Clone()), true
	case time.Time:
		return doc.DateTime(t), true
	case primitive.DateTime:
		return doc.DateTimeMillis(int64(t)), true
	case doc.ObjectID:
		return doc.OID(t), true
	case []byte:
		if t == nil {
			return doc.Null(), true
		}
		return doc.Binary(append([]byte(nil), t...)), true
	case string:
		return doc.String(t), true
	case bool:
		return doc.Bool(t), true
	case float64:
		return doc.Double(t), true
	}
	return doc.Null(), false
}

func parseReflect(r goreflect.Value) (doc.Value, error) {
	for r.Kind() == goreflect.Ptr || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return doc.Null(), nil
		}
		r = r.Elem()
	}
	if !r.IsValid() {
		return doc.Null(), nil
	}
	if r.CanInterface() {
		if v, ok := parseSimple(r.Interface()); ok {
			return v, nil
		}
	}

	switch r.Kind() {
	case goreflect.Bool:
		return doc.Bool(r.Bool()), nil
	case goreflect.String:
		return doc.String(r.String()), nil
	case goreflect.Int8, goreflect.Int16, goreflect.Int32:
		return doc.Int32(int32(r.Int())), nil
	case goreflect.Int, goreflect.Int64:
		return intValue(r.Int()), nil
	case goreflect.Uint8, goreflect.Uint16:
		return doc.Int32(int32(r.Uint())), nil
	case goreflect.Uint, goreflect.Uint32, goreflect.Uint64, goreflect.Uintptr:
		u := r.Uint()
		if u > math.MaxInt64 {
			return doc.Null(), domain.ErrDocumentType{Reason: fmt.Sprintf("%d overflows int64", u)}
		}
		return intValue(int64(u)), nil
	case goreflect.Float32, goreflect.Float64:
		return doc.Double(r.Float()), nil
	case goreflect.Slice:
		if r.IsNil() {
			return doc.Null(), nil
		}
		return parseList(r)
	case goreflect.Array:
		return parseList(r)
	case goreflect.Map:
		if r.IsNil() {
			return doc.Null(), nil
		}
		return parseMap(r)
	case goreflect.Struct:
		return parseStruct(r)
	}
	return doc.Null(), domain.ErrDocumentType{Reason: "unsupported type " + r.Type().String()}
}

// intValue keeps values fitting 32 bits as Int32.
func intValue(i int64) doc.Value {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return doc.Int32(int32(i))
	}
	return doc.Int64(i)
}

func parseList(r goreflect.Value) (doc.Value, error) {
	length := r.Len()
	res := make([]doc.Value, length)
	for i := range length {
		v, err := parseReflect(r.Index(i))
		if err != nil {
			return doc.Null(), err
		}
		res[i] = v
	}
	return doc.Array(res...), nil
}

func parseMap(r goreflect.Value) (doc.Value, error) {
	if r.Type().Key().Kind() != goreflect.String {
		return doc.Null(), domain.ErrDocumentType{Reason: "map keys must be strings, got " + r.Type().Key().String()}
	}
	keys := r.MapKeys()
	slices.SortFunc(keys, func(a, b goreflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})
	res := doc.New()
	for _, k := range keys {
		v, err := parseReflect(r.MapIndex(k))
		if err != nil {
			return doc.Null(), err
		}
		res.Set(k.String(), v)
	}
	return doc.Doc(res), nil
}

func parseStruct(r goreflect.Value) (doc.Value, error) {
	typ := r.Type()
	res := doc.New()
	for n := range r.NumField() {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		name, value, ok, err := parseField(r.Field(n), field)
		if err != nil {
			return doc.Null(), fmt.Errorf("field %s: %w", field.Name, err)
		}
		if ok {
			res.Set(name, value)
		}
	}
	return doc.Doc(res), nil
}

func parseField(r goreflect.Value, typ goreflect.StructField) (string, doc.Value, bool, error) {
	name := typ.Name
	var tagSegments []string
	if tag, ok := typ.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return "", doc.Null(), false, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isEmpty(r) {
		return "", doc.Null(), false, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return "", doc.Null(), false, nil
	}

	value, err := parseReflect(r)
	if err != nil {
		return "", doc.Null(), false, err
	}
	return name, value, true, nil
}

func isEmpty(r goreflect.Value) bool {
	switch r.Kind() {
	case goreflect.Ptr, goreflect.Interface:
		return r.IsNil()
	case goreflect.Slice, goreflect.Map, goreflect.String, goreflect.Array:
		return r.Len() == 0
	}
	return r.IsZero()
}
