package data

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

type DocumentTestSuite struct {
	suite.Suite
}

func (s *DocumentTestSuite) TestNil() {
	d, err := NewDocument(nil)
	s.NoError(err)
	s.Zero(d.Len())

	var p *struct{ A int }
	d, err = NewDocument(p)
	s.NoError(err)
	s.Zero(d.Len())
}

// Will sort map keys.
func (s *DocumentTestSuite) TestSimpleMap() {
	d, err := NewDocument(map[string]any{"yeah": "sure", "of": "course"})
	s.NoError(err)
	s.Equal(doc.New(
		doc.E{Key: "of", Value: doc.String("course")},
		doc.E{Key: "yeah", Value: doc.String("sure")},
	), d)
}

// Will keep the declaration order of exported fields.
func (s *DocumentTestSuite) TestSimpleStruct() {
	obj := struct {
		Yes, No string
		hidden  string
	}{Yes: "indeed", No: "way", hidden: "x"}

	d, err := NewDocument(obj)
	s.NoError(err)
	s.Equal([]string{"Yes", "No"}, d.Keys())
}

// Will rename, ignore and omit fields following the tag.
func (s *DocumentTestSuite) TestTags() {
	type address struct {
		City string `gedoc:"city"`
	}
	obj := struct {
		ID      int            `gedoc:"_id"`
		Ignored string         `gedoc:"-"`
		Tags    []string       `gedoc:"tags,omitempty"`
		Count   int            `gedoc:"count,omitzero"`
		Addr    *address       `gedoc:"addr,omitempty"`
		Extra   map[string]int `gedoc:",omitempty"`
	}{ID: 3, Ignored: "x", Addr: &address{City: "Recife"}}

	d, err := NewDocument(&obj)
	s.NoError(err)
	s.Equal([]string{"_id", "addr"}, d.Keys())
	city, ok := d.GetEmbedded("addr.city")
	s.True(ok)
	s.Equal(doc.String("Recife"), city)
}

// Will follow pointers and interfaces, omitting nil ones when asked.
func (s *DocumentTestSuite) TestPointers() {
	n := 7
	pn := &n
	var iface any = &pn
	obj := struct {
		Deep  **int `gedoc:"deep"`
		Iface any   `gedoc:"iface"`
		Nil   *int  `gedoc:"nil"`
		Gone  *int  `gedoc:"gone,omitempty"`
	}{Deep: &pn, Iface: iface}

	d, err := NewDocument(&obj)
	s.NoError(err)
	s.Equal(doc.New(
		doc.E{Key: "deep", Value: doc.Int32(7)},
		doc.E{Key: "iface", Value: doc.Int32(7)},
		doc.E{Key: "nil", Value: doc.Null()},
	), d)
}

// Will map Go types to document kinds.
func (s *DocumentTestSuite) TestKinds() {
	now := time.UnixMilli(1700000000123)
	oid := primitive.NewObjectID()
	type named string
	d, err := NewDocument(map[string]any{
		"a": int8(1),
		"b": 2,
		"c": int64(math.MaxInt32) + 1,
		"d": uint16(4),
		"e": float32(0.5),
		"f": now,
		"g": oid,
		"h": []byte{1, 2},
		"i": []any{"x", true, nil},
		"j": named("n"),
		"k": doc.Int64(9),
		"l": time.Second,
	})
	s.Require().NoError(err)

	want := map[string]doc.Value{
		"a": doc.Int32(1),
		"b": doc.Int32(2),
		"c": doc.Int64(math.MaxInt32 + 1),
		"d": doc.Int32(4),
		"e": doc.Double(0.5),
		"f": doc.DateTime(now),
		"g": doc.OID(oid),
		"h": doc.Binary([]byte{1, 2}),
		"i": doc.Array(doc.String("x"), doc.Bool(true), doc.Null()),
		"j": doc.String("n"),
		"k": doc.Int64(9),
		"l": doc.Int64(int64(time.Second)),
	}
	for k, v := range want {
		got, ok := d.Get(k)
		s.True(ok, k)
		s.Equal(v, got, k)
	}
}

// Will reject unsupported values.
func (s *DocumentTestSuite) TestUnsupported() {
	_, err := NewDocument(map[int]string{1: "a"})
	s.ErrorAs(err, new(domain.ErrDocumentType))

	_, err = NewDocument(map[string]any{"f": func() {}})
	s.ErrorAs(err, new(domain.ErrDocumentType))

	_, err = NewDocument(map[string]uint64{"big": math.MaxUint64})
	s.ErrorAs(err, new(domain.ErrDocumentType))

	_, err = NewDocument("text")
	s.ErrorAs(err, new(domain.ErrDocumentType))
}

// Will copy existing documents.
func (s *DocumentTestSuite) TestDocument() {
	orig := doc.New(doc.E{Key: "a", Value: doc.Int32(1)})
	d, err := NewDocument(orig)
	s.NoError(err)
	s.Equal(orig, d)
	d.Set("b", doc.Null())
	s.False(orig.Has("b"))
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
