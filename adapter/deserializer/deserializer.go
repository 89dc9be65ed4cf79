// Package deserializer contains the default [domain.Deserializer]
// implementation, reading the BSON written by the serializer package.
package deserializer

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// NewDeserializer returns a new instance of domain.Deserializer.
func NewDeserializer() domain.Deserializer {
	return &Deserializer{}
}

// Deserializer implements [domain.Deserializer].
type Deserializer struct{}

// Deserialize implements [domain.Deserializer].
func (d *Deserializer) Deserialize(ctx context.Context, b []byte) (*doc.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	raw := bson.Raw(b)
	if err := raw.Validate(); err != nil {
		return nil, domain.ErrDecode{Source: err}
	}
	return FromRaw(raw)
}

// FromRaw converts a validated BSON document. Types without a [doc.Value]
// counterpart are rejected with [domain.ErrDocumentType].
func FromRaw(raw bson.Raw) (*doc.Document, error) {
	elems, err := raw.Elements()
	if err != nil {
		return nil, domain.ErrDecode{Source: err}
	}
	res := doc.New()
	for _, e := range elems {
		v, err := ValueFromRaw(e.Value())
		if err != nil {
			return nil, err
		}
		res.Set(e.Key(), v)
	}
	return res, nil
}

// ValueFromRaw converts a single BSON value.
func ValueFromRaw(rv bson.RawValue) (doc.Value, error) {
	switch rv.Type {
	case bsontype.Null:
		return doc.Null(), nil
	case bsontype.Boolean:
		return doc.Bool(rv.Boolean()), nil
	case bsontype.Int32:
		return doc.Int32(rv.Int32()), nil
	case bsontype.Int64:
		return doc.Int64(rv.Int64()), nil
	case bsontype.Double:
		return doc.Double(rv.Double()), nil
	case bsontype.String:
		return doc.String(rv.StringValue()), nil
	case bsontype.Binary:
		_, data := rv.Binary()
		return doc.Binary(append([]byte(nil), data...)), nil
	case bsontype.DateTime:
		return doc.DateTimeMillis(rv.DateTime()), nil
	case bsontype.ObjectID:
		return doc.OID(rv.ObjectID()), nil
	case bsontype.Array:
		values, err := rv.Array().Values()
		if err != nil {
			return doc.Null(), domain.ErrDecode{Source: err}
		}
		arr := make([]doc.Value, len(values))
		for n, e := range values {
			if arr[n], err = ValueFromRaw(e); err != nil {
				return doc.Null(), err
			}
		}
		return doc.Array(arr...), nil
	case bsontype.EmbeddedDocument:
		sub, err := FromRaw(rv.Document())
		if err != nil {
			return doc.Null(), err
		}
		return doc.Doc(sub), nil
	}
	return doc.Null(), domain.ErrDocumentType{Reason: "unsupported BSON type " + rv.Type.String()}
}
