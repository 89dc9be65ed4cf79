package index

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// failingDelete wraps a tree whose deletes always fail.
type failingDelete struct {
	bst.BST[doc.Value, int]
}

func (f failingDelete) Delete(doc.Value, *int) error {
	return errors.New("delete failed")
}

type IndexTestSuite struct {
	suite.Suite
	m    *Manager
	docs []*doc.Document
}

func (s *IndexTestSuite) person(id int32, email string, age doc.Value, bio string) *doc.Document {
	d := doc.New(
		doc.E{Key: "_id", Value: doc.Int32(id)},
		doc.E{Key: "email", Value: doc.String(email)},
		doc.E{Key: "bio", Value: doc.String(bio)},
	)
	if !age.IsNull() {
		d.Set("age", age)
	}
	return d
}

func (s *IndexTestSuite) all() iter.Seq2[int, *doc.Document] {
	return func(yield func(int, *doc.Document) bool) {
		for n, d := range s.docs {
			if !yield(n, d) {
				return
			}
		}
	}
}

func (s *IndexTestSuite) SetupTest() {
	s.m = NewManager()
	s.docs = []*doc.Document{
		s.person(1, "a@x.com", doc.Int32(20), "Loves Go and coffee"),
		s.person(2, "b@x.com", doc.Double(30), "coffee, tea"),
		s.person(3, "c@x.com", doc.Int64(20), "Go go GO"),
		s.person(4, "d@x.com", doc.Null(), "nothing here"),
	}
	s.NoError(s.m.Configure(domain.IndexList{
		Indexes: []domain.IndexDefinition{
			{Path: "email", Name: "email_u", Kind: domain.IndexUnique},
			{Path: "age", Kind: domain.IndexIndexed},
			{Path: "ignored", Kind: domain.IndexNone},
		},
		TextIndexes: []string{"bio"},
	}, s.all()))
}

func (s *IndexTestSuite) lookup(f query.FieldFilter) []int {
	slots, ok, err := s.m.Lookup(f)
	s.Require().NoError(err)
	s.Require().True(ok)
	return slots
}

func (s *IndexTestSuite) TestDefinitions() {
	defs := s.m.Definitions()
	s.Equal([]string{"_id", "age", "email"}, slices.Sorted(maps.Keys(defs)))
	s.Equal(domain.IDIndexName, defs["_id"].Name)
	s.Equal(domain.IndexUnique, defs["_id"].Kind)
	s.Equal("age_1", defs["age"].Name)
	s.Equal([]string{"bio"}, s.m.TextPaths())
}

// Numeric keys share buckets whatever their representation.
func (s *IndexTestSuite) TestEq() {
	s.Equal([]int{0, 2}, s.lookup(query.Eq{Path: "age", Value: doc.Double(20)}))
	s.Equal([]int{1}, s.lookup(query.Eq{Path: "email", Value: doc.String("b@x.com")}))
	s.Empty(s.lookup(query.Eq{Path: "age", Value: doc.Int32(99)}))
	s.Equal([]int{3}, s.lookup(query.Eq{Path: "_id", Value: doc.Int64(4)}))
}

func (s *IndexTestSuite) TestIn() {
	s.Equal([]int{0, 1, 2}, s.lookup(query.In{Path: "age", Values: []doc.Value{doc.Int32(30), doc.Int32(20), doc.Double(20)}}))
}

func (s *IndexTestSuite) TestComp() {
	s.Equal([]int{1}, s.lookup(query.Comp{Path: "age", Op: query.GT, Value: doc.Int32(20)}))
	s.Equal([]int{0, 1, 2}, s.lookup(query.Comp{Path: "age", Op: query.GTE, Value: doc.Int32(20)}))
	s.Empty(s.lookup(query.Comp{Path: "age", Op: query.LT, Value: doc.Int32(20)}))
	s.Equal([]int{0, 2}, s.lookup(query.Comp{Path: "age", Op: query.LTE, Value: doc.Double(29.9)}))
}

func (s *IndexTestSuite) TestNotIndexable() {
	_, ok, err := s.m.Lookup(query.Eq{Path: "bio", Value: doc.String("x")})
	s.NoError(err)
	s.False(ok)

	_, ok, err = s.m.Lookup(query.Ne{Path: "age", Value: doc.Int32(1)})
	s.NoError(err)
	s.False(ok)
}

func (s *IndexTestSuite) TestText() {
	slots, ok := s.m.TextLookup(query.FieldText{Path: "bio", Term: "go"})
	s.True(ok)
	s.Equal([]int{0, 2}, slots)

	slots, _ = s.m.TextLookup(query.FieldText{Path: "bio", Term: "coffee GO"})
	s.Equal([]int{0}, slots)

	slots, _ = s.m.TextLookup(query.FieldText{Path: "bio", Term: "..."})
	s.Empty(slots)

	_, ok = s.m.TextLookup(query.FieldText{Path: "email", Term: "x"})
	s.False(ok)
}

// A unique violation leaves every index as it was.
func (s *IndexTestSuite) TestAddUniqueViolation() {
	dup := s.person(5, "a@x.com", doc.Int32(50), "unique words")
	s.ErrorIs(s.m.Add(4, dup), domain.ErrConstraintViolated)

	s.Empty(s.lookup(query.Eq{Path: "_id", Value: doc.Int32(5)}))
	s.Empty(s.lookup(query.Eq{Path: "age", Value: doc.Int32(50)}))
	slots, _ := s.m.TextLookup(query.FieldText{Path: "bio", Term: "unique"})
	s.Empty(slots)
}

func (s *IndexTestSuite) TestReindex() {
	old := s.m.Capture(s.docs[0])
	changed := s.docs[0].Clone()
	changed.Set("age", doc.Int32(40))
	changed.Set("bio", doc.String("tea only"))
	s.NoError(s.m.Reindex(0, old, changed))

	s.Equal([]int{2}, s.lookup(query.Eq{Path: "age", Value: doc.Int32(20)}))
	s.Equal([]int{0}, s.lookup(query.Eq{Path: "age", Value: doc.Int32(40)}))
	slots, _ := s.m.TextLookup(query.FieldText{Path: "bio", Term: "tea"})
	s.Equal([]int{0, 1}, slots)
	slots, _ = s.m.TextLookup(query.FieldText{Path: "bio", Term: "coffee"})
	s.Equal([]int{1}, slots)
}

func (s *IndexTestSuite) TestReindexRestoresOnViolation() {
	old := s.m.Capture(s.docs[0])
	changed := s.docs[0].Clone()
	changed.Set("email", doc.String("b@x.com"))
	changed.Set("age", doc.Int32(77))
	s.ErrorIs(s.m.Reindex(0, old, changed), domain.ErrConstraintViolated)

	s.Equal([]int{0}, s.lookup(query.Eq{Path: "email", Value: doc.String("a@x.com")}))
	s.Equal([]int{0, 2}, s.lookup(query.Eq{Path: "age", Value: doc.Int32(20)}))
	s.Empty(s.lookup(query.Eq{Path: "age", Value: doc.Int32(77)}))
}

// A removal failing halfway puts back the entries already removed.
func (s *IndexTestSuite) TestReindexRestoresOnRemoveFailure() {
	age := s.m.indexes["age"]
	age.Tree = failingDelete{BST: age.Tree}

	old := s.m.Capture(s.docs[0])
	changed := s.docs[0].Clone()
	changed.Set("email", doc.String("z@x.com"))
	changed.Set("age", doc.Int32(77))
	changed.Set("bio", doc.String("tea only"))
	s.ErrorContains(s.m.Reindex(0, old, changed), "delete failed")

	s.Equal([]int{0}, s.lookup(query.Eq{Path: "_id", Value: doc.Int32(1)}))
	s.Equal([]int{0}, s.lookup(query.Eq{Path: "email", Value: doc.String("a@x.com")}))
	s.Empty(s.lookup(query.Eq{Path: "email", Value: doc.String("z@x.com")}))
	s.Equal([]int{0, 2}, s.lookup(query.Eq{Path: "age", Value: doc.Int32(20)}))
	s.Empty(s.lookup(query.Eq{Path: "age", Value: doc.Int32(77)}))
	slots, _ := s.m.TextLookup(query.FieldText{Path: "bio", Term: "coffee"})
	s.Equal([]int{0, 1}, slots)
	slots, _ = s.m.TextLookup(query.FieldText{Path: "bio", Term: "only"})
	s.Empty(slots)
}

func (s *IndexTestSuite) TestRemove() {
	s.NoError(s.m.Remove(2, s.docs[2]))
	s.Equal([]int{0}, s.lookup(query.Eq{Path: "age", Value: doc.Int32(20)}))
	slots, _ := s.m.TextLookup(query.FieldText{Path: "bio", Term: "go"})
	s.Equal([]int{0}, slots)
}

// Configuring over data breaking a unique index keeps the old configuration.
func (s *IndexTestSuite) TestConfigureFailure() {
	err := s.m.Configure(domain.IndexList{
		Indexes: []domain.IndexDefinition{{Path: "age", Kind: domain.IndexUnique}},
	}, s.all())
	s.ErrorIs(err, domain.ErrConstraintViolated)
	s.Equal([]string{"bio"}, s.m.TextPaths())
	s.Contains(s.m.Definitions(), "email")
}

func (s *IndexTestSuite) TestStats() {
	stats := s.m.Stats()
	s.Equal(4, stats[domain.IDIndexName])
	s.Equal(2, stats["age_1"])
	s.Equal(4, stats["email_u"])
}

func TestIndexTestSuite(t *testing.T) {
	suite.Run(t, new(IndexTestSuite))
}
