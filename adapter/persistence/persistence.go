// Package persistence contains the default [domain.Persistence]
// implementation.
//
// Collections are encoded as the BSON document {v: 1, documents: [...]} and
// databases as {v: 1, collections: {name: binary}}, where every binary holds
// a collection blob. Encoded blobs start with a one byte header telling
// whether the rest is raw BSON or zstd compressed BSON.
package persistence

import (
	"context"
	"maps"
	"os"
	"slices"

	"github.com/klauspost/compress/zstd"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/storage"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644
)

// FormatVersion is written in the v field of every blob.
const FormatVersion = 1

// Compression selects how blobs are compressed.
type Compression byte

// Blob headers.
const (
	CompressionNone Compression = 0x00
	CompressionZstd Compression = 0x01
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	}
	return "unknown"
}

// ParseCompression reads the names printed by [Compression.String]. The
// empty string means none.
func ParseCompression(s string) (Compression, bool) {
	switch s {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	}
	return CompressionNone, false
}

// Persistence implements domain.Persistence.
type Persistence struct {
	fileMode     os.FileMode
	dirMode      os.FileMode
	compression  Compression
	serializer   domain.Serializer
	deserializer domain.Deserializer
	storage      domain.Storage
	encoder      *zstd.Encoder
	decoder      *zstd.Decoder
}

// NewPersistence returns a new implementation of domain.Persistence.
func NewPersistence(options ...Option) (domain.Persistence, error) {
	p := Persistence{
		fileMode:     DefaultFileMode,
		dirMode:      DefaultDirMode,
		compression:  CompressionNone,
		serializer:   serializer.NewSerializer(),
		deserializer: deserializer.NewDeserializer(),
		storage:      storage.NewStorage(),
	}
	for _, option := range options {
		option(&p)
	}

	var err error
	if p.encoder, err = zstd.NewWriter(nil); err != nil {
		return nil, err
	}
	if p.decoder, err = zstd.NewReader(nil); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeCollection implements [domain.Persistence].
func (p *Persistence) EncodeCollection(ctx context.Context, docs []*doc.Document) ([]byte, error) {
	arr := make(bson.A, len(docs))
	for n, d := range docs {
		b, err := p.serializer.Serialize(ctx, d)
		if err != nil {
			return nil, err
		}
		arr[n] = bson.Raw(b)
	}
	return p.encode(bson.D{
		{Key: "v", Value: int32(FormatVersion)},
		{Key: "documents", Value: arr},
	})
}

// DecodeCollection implements [domain.Persistence].
func (p *Persistence) DecodeCollection(ctx context.Context, blob []byte) ([]*doc.Document, error) {
	raw, err := p.decode(blob)
	if err != nil {
		return nil, err
	}
	values, err := p.lookup(raw, "documents", bsontype.Array)
	if err != nil {
		return nil, err
	}
	elems, err := values.Array().Values()
	if err != nil {
		return nil, domain.ErrCorruptSnapshot{Reason: "documents", Err: err}
	}
	res := make([]*doc.Document, len(elems))
	for n, e := range elems {
		if e.Type != bsontype.EmbeddedDocument {
			return nil, domain.ErrCorruptSnapshot{Reason: "documents must hold only documents"}
		}
		if res[n], err = p.deserializer.Deserialize(ctx, e.Value); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// EncodeDatabase implements [domain.Persistence]. Collections are written in
// lexical order.
func (p *Persistence) EncodeDatabase(ctx context.Context, collections map[string][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols := make(bson.D, 0, len(collections))
	for _, name := range slices.Sorted(maps.Keys(collections)) {
		cols = append(cols, bson.E{Key: name, Value: primitive.Binary{Data: collections[name]}})
	}
	return p.encode(bson.D{
		{Key: "v", Value: int32(FormatVersion)},
		{Key: "collections", Value: cols},
	})
}

// DecodeDatabase implements [domain.Persistence].
func (p *Persistence) DecodeDatabase(ctx context.Context, blob []byte) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := p.decode(blob)
	if err != nil {
		return nil, err
	}
	cols, err := p.lookup(raw, "collections", bsontype.EmbeddedDocument)
	if err != nil {
		return nil, err
	}
	elems, err := cols.Document().Elements()
	if err != nil {
		return nil, domain.ErrCorruptSnapshot{Reason: "collections", Err: err}
	}
	res := make(map[string][]byte, len(elems))
	for _, e := range elems {
		v := e.Value()
		if v.Type != bsontype.Binary {
			return nil, domain.ErrCorruptSnapshot{Reason: "collection " + e.Key() + " is not binary"}
		}
		_, data := v.Binary()
		res[e.Key()] = slices.Clone(data)
	}
	return res, nil
}

// Store implements [domain.Persistence].
func (p *Persistence) Store(ctx context.Context, path string, data []byte) error {
	return p.storage.CrashSafeWriteFile(ctx, path, data, p.dirMode, p.fileMode)
}

// Load implements [domain.Persistence].
func (p *Persistence) Load(ctx context.Context, path string) ([]byte, error) {
	exists, err := p.storage.Exists(path)
	if err != nil || !exists {
		return nil, err
	}
	return p.storage.ReadFile(ctx, path)
}

func (p *Persistence) encode(d bson.D) ([]byte, error) {
	b, err := bson.Marshal(d)
	if err != nil {
		return nil, domain.ErrEncode{Source: err}
	}
	if p.compression == CompressionZstd {
		return p.encoder.EncodeAll(b, []byte{byte(CompressionZstd)}), nil
	}
	return append([]byte{byte(CompressionNone)}, b...), nil
}

// decode accepts blobs written with any compression.
func (p *Persistence) decode(blob []byte) (bson.Raw, error) {
	if len(blob) == 0 {
		return nil, domain.ErrCorruptSnapshot{Reason: "empty blob"}
	}
	body := blob[1:]
	switch Compression(blob[0]) {
	case CompressionNone:
	case CompressionZstd:
		var err error
		if body, err = p.decoder.DecodeAll(body, nil); err != nil {
			return nil, domain.ErrCorruptSnapshot{Reason: "zstd", Err: err}
		}
	default:
		return nil, domain.ErrCorruptSnapshot{Reason: "unknown header"}
	}

	raw := bson.Raw(body)
	if err := raw.Validate(); err != nil {
		return nil, domain.ErrCorruptSnapshot{Reason: "bson", Err: err}
	}
	if v, ok := raw.Lookup("v").AsInt64OK(); !ok || v != FormatVersion {
		return nil, domain.ErrCorruptSnapshot{Reason: "unsupported version"}
	}
	return raw, nil
}

func (p *Persistence) lookup(raw bson.Raw, key string, t bsontype.Type) (bson.RawValue, error) {
	v, err := raw.LookupErr(key)
	if err != nil || v.Type != t {
		return bson.RawValue{}, domain.ErrCorruptSnapshot{Reason: "missing " + key}
	}
	return v, nil
}
