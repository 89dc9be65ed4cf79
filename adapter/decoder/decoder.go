// Package decoder contains the default [domain.Decoder] implementation,
// filling Go values from documents.
package decoder

import (
	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Decoder implements [domain.Decoder].
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder]. Documents and values are turned into
// plain Go values before being decoded into target with the gedoc struct
// tag. A **doc.Document target receives a converted copy of source.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil{}
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return domain.ErrNonPointer{}
	}

	if t, ok := target.(**doc.Document); ok {
		res, err := data.NewDocument(source)
		if err != nil {
			return err
		}
		*t = res
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: data.TagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(Plain(source)); err != nil {
		return domain.ErrDecode{Source: err}
	}
	return nil
}

// Plain converts documents and values into maps, slices and Go scalars.
// Anything else is returned unchanged.
func Plain(source any) any {
	switch t := source.(type) {
	case *doc.Document:
		if t == nil {
			return nil
		}
		res := make(map[string]any, t.Len())
		for k, v := range t.Iter() {
			res[k] = plainValue(v)
		}
		return res
	case doc.Value:
		return plainValue(t)
	}
	return source
}

func plainValue(v doc.Value) any {
	switch v.Kind() {
	case doc.KindBool:
		b, _ := v.AsBool()
		return b
	case doc.KindInt32:
		i, _ := v.AsInt64()
		return int32(i)
	case doc.KindInt64:
		i, _ := v.AsInt64()
		return i
	case doc.KindDouble:
		f, _ := v.AsFloat()
		return f
	case doc.KindString:
		s, _ := v.AsString()
		return s
	case doc.KindBinary:
		b, _ := v.AsBinary()
		return append([]byte(nil), b...)
	case doc.KindDateTime:
		t, _ := v.AsTime()
		return t
	case doc.KindObjectID:
		id, _ := v.AsObjectID()
		return id
	case doc.KindArray:
		arr, _ := v.AsArray()
		res := make([]any, len(arr))
		for n, e := range arr {
			res[n] = plainValue(e)
		}
		return res
	case doc.KindDocument:
		d, _ := v.AsDocument()
		return Plain(d)
	}
	return nil
}
