// Package serializer contains the default [domain.Serializer]
// implementation, encoding documents as BSON.
package serializer

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Serializer implements [domain.Serializer].
type Serializer struct{}

// NewSerializer returns a new implementation of [domain.Serializer].
func NewSerializer() domain.Serializer {
	return &Serializer{}
}

// Serialize implements [domain.Serializer]. Field order and value kinds are
// kept, so [deserializer.Deserializer] restores an equal document.
func (s *Serializer) Serialize(ctx context.Context, d *doc.Document) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	b, err := bson.Marshal(ToBSON(d))
	if err != nil {
		return nil, domain.ErrEncode{Source: err}
	}
	return b, nil
}

// ToBSON converts d into an ordered BSON document.
func ToBSON(d *doc.Document) bson.D {
	res := make(bson.D, 0, d.Len())
	for k, v := range d.Iter() {
		res = append(res, bson.E{Key: k, Value: ValueToBSON(v)})
	}
	return res
}

// ValueToBSON converts v into the value the BSON encoder writes with the
// same type.
func ValueToBSON(v doc.Value) any {
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
		return primitive.Binary{Data: b}
	case doc.KindDateTime:
		ms, _ := v.AsDateTime()
		return primitive.DateTime(ms)
	case doc.KindObjectID:
		oid, _ := v.AsObjectID()
		return oid
	case doc.KindArray:
		arr, _ := v.AsArray()
		res := make(bson.A, len(arr))
		for n, e := range arr {
			res[n] = ValueToBSON(e)
		}
		return res
	case doc.KindDocument:
		d, _ := v.AsDocument()
		return ToBSON(d)
	}
	return primitive.Null{}
}
