package matcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

type MatcherTestSuite struct {
	suite.Suite
	m *Matcher
	d *doc.Document
}

func (s *MatcherTestSuite) SetupTest() {
	s.m = NewMatcher().(*Matcher)
	s.d = doc.New(
		doc.E{Key: "_id", Value: doc.Int32(1)},
		doc.E{Key: "item", Value: doc.String("journal")},
		doc.E{Key: "qty", Value: doc.Int32(25)},
		doc.E{Key: "tags", Value: doc.Array(doc.String("red"), doc.String("blank"))},
		doc.E{Key: "size", Value: doc.Doc(doc.New(
			doc.E{Key: "h", Value: doc.Double(14)},
			doc.E{Key: "uom", Value: doc.String("cm")},
		))},
		doc.E{Key: "notes", Value: doc.String("Bound in Leather\nsecond line")},
		doc.E{Key: "nothing", Value: doc.Null()},
	)
}

func (s *MatcherTestSuite) str(v string) doc.Value { return doc.String(v) }

// Arrays are compared as whole values, there is no implicit element match.
func (s *MatcherTestSuite) TestEqArrays() {
	s.False(s.m.Match(query.Eq{Path: "tags", Value: s.str("red")}, s.d))
	s.True(s.m.Match(query.Eq{Path: "tags", Value: doc.Array(s.str("red"), s.str("blank"))}, s.d))
	s.False(s.m.Match(query.Eq{Path: "tags", Value: doc.Array(s.str("blank"), s.str("red"))}, s.d))
	s.True(s.m.Match(query.ArrCont{Path: "tags", Value: s.str("red")}, s.d))
}

// Numeric equality ignores the representation.
func (s *MatcherTestSuite) TestNumericCoercion() {
	for _, v := range []doc.Value{doc.Int32(25), doc.Double(25.0), doc.Int64(25)} {
		s.True(s.m.Match(query.Eq{Path: "qty", Value: v}, s.d), v.String())
		s.True(s.m.Match(query.In{Path: "qty", Values: []doc.Value{doc.Int32(1), v}}, s.d))
		s.False(s.m.Match(query.Ne{Path: "qty", Value: v}, s.d))
	}
	s.True(s.m.Match(query.Eq{Path: "size.h", Value: doc.Int64(14)}, s.d))
}

func (s *MatcherTestSuite) TestAbsentFields() {
	s.False(s.m.Match(query.Eq{Path: "missing", Value: doc.Null()}, s.d))
	s.True(s.m.Match(query.Eq{Path: "nothing", Value: doc.Null()}, s.d))
	s.True(s.m.Match(query.Ne{Path: "missing", Value: doc.Int32(1)}, s.d))
	s.True(s.m.Match(query.Nin{Path: "missing", Values: []doc.Value{doc.Int32(1)}}, s.d))
	s.False(s.m.Match(query.In{Path: "missing", Values: []doc.Value{doc.Null()}}, s.d))
	s.False(s.m.Match(query.Comp{Path: "missing", Op: query.LT, Value: doc.Int32(1)}, s.d))
	s.True(s.m.Match(query.ArrNotCont{Path: "missing", Value: doc.Int32(1)}, s.d))
}

func (s *MatcherTestSuite) TestComp() {
	s.True(s.m.Match(query.Comp{Path: "qty", Op: query.GT, Value: doc.Double(24.5)}, s.d))
	s.True(s.m.Match(query.Comp{Path: "qty", Op: query.GTE, Value: doc.Int64(25)}, s.d))
	s.False(s.m.Match(query.Comp{Path: "qty", Op: query.LT, Value: doc.Int32(25)}, s.d))
	s.True(s.m.Match(query.Comp{Path: "qty", Op: query.LTE, Value: doc.Int32(25)}, s.d))
	s.True(s.m.Match(query.Comp{Path: "size.uom", Op: query.GT, Value: s.str("a")}, s.d))
}

func (s *MatcherTestSuite) TestArrays() {
	s.True(s.m.Match(query.ArrSize{Path: "tags", Size: 2}, s.d))
	s.False(s.m.Match(query.ArrSize{Path: "item", Size: 7}, s.d))

	red, blank, blue := s.str("red"), s.str("blank"), s.str("blue")
	testCases := []struct {
		op      query.ArrayOp
		operand []doc.Value
		res     bool
	}{
		{query.ArrAny, []doc.Value{blue, red}, true},
		{query.ArrAny, []doc.Value{blue}, false},
		{query.ArrNone, []doc.Value{blue}, true},
		{query.ArrNone, []doc.Value{blank}, false},
		{query.ArrAll, []doc.Value{blank}, true},
		{query.ArrAll, []doc.Value{blank, blue}, false},
		{query.ArrSet, []doc.Value{blank, red}, true},
		{query.ArrSet, []doc.Value{blank, red, red}, true},
		{query.ArrSet, []doc.Value{red}, false},
	}
	for _, tc := range testCases {
		s.Equal(tc.res, s.m.Match(query.ArrComp{Path: "tags", Op: tc.op, Values: tc.operand}, s.d), "%s %v", tc.op, tc.operand)
	}
}

func (s *MatcherTestSuite) TestLogic() {
	t := query.Eq{Path: "item", Value: s.str("journal")}
	f := query.Eq{Path: "item", Value: s.str("planner")}

	s.True(s.m.Match(query.And{}, s.d))
	s.False(s.m.Match(query.Or{}, s.d))
	s.True(s.m.Match(query.And{Filters: []query.Filter{t, t}}, s.d))
	s.False(s.m.Match(query.And{Filters: []query.Filter{t, f}}, s.d))
	s.True(s.m.Match(query.Or{Filters: []query.Filter{f, t}}, s.d))
	s.True(s.m.Match(query.Not{Filter: f}, s.d))
	s.True(s.m.Match(nil, s.d))
	s.False(s.m.Match(query.Native{Value: "{}"}, s.d))
}

// Regex uses find semantics and honours the i, m, s and x options.
func (s *MatcherTestSuite) TestRegex() {
	testCases := []struct {
		pattern, options string
		res              bool
	}{
		{"our", "", true},
		{"^journal$", "", true},
		{"JOURNAL", "", false},
		{"JOURNAL", "i", true},
		{"j o u r", "x", true},
		{"[", "", false},
		{"our", "q", false},
	}
	for _, tc := range testCases {
		s.Equal(tc.res, s.m.Match(query.Regex{Path: "item", Pattern: tc.pattern, Options: tc.options}, s.d), tc.pattern)
	}

	s.False(s.m.Match(query.Regex{Path: "notes", Pattern: "^second"}, s.d))
	s.True(s.m.Match(query.Regex{Path: "notes", Pattern: "^second", Options: "m"}, s.d))
	s.False(s.m.Match(query.Regex{Path: "notes", Pattern: "Leather.second"}, s.d))
	s.True(s.m.Match(query.Regex{Path: "notes", Pattern: "Leather.second", Options: "s"}, s.d))
	s.False(s.m.Match(query.Regex{Path: "qty", Pattern: "25"}, s.d))
}

// Will keep at most the configured number of compiled patterns.
func (s *MatcherTestSuite) TestRegexCacheBounded() {
	m := NewMatcher(WithRegexCacheSize(4)).(*Matcher)
	d := doc.New(doc.E{Key: "s", Value: doc.String("abc123")})
	for n := range 100 {
		m.Match(query.Regex{Path: "s", Pattern: fmt.Sprintf("c%d", n)}, d)
		s.LessOrEqual(m.regexes.Len(), 4)
	}
	s.Equal(4, m.regexes.Len())

	// evicted patterns compile again
	s.True(m.Match(query.Regex{Path: "s", Pattern: "c1"}, d))
	s.True(m.regexes.Contains(regexKey{pattern: "c1"}))
	s.False(m.regexes.Contains(regexKey{pattern: "c95"}))

	s.Equal(DefaultRegexCacheSize, NewMatcher(WithRegexCacheSize(0)).(*Matcher).cacheSize)
}

func (s *MatcherTestSuite) TestText() {
	s.True(s.m.Match(query.FieldText{Path: "notes", Term: "leather BOUND"}, s.d))
	s.False(s.m.Match(query.FieldText{Path: "notes", Term: "leather cover"}, s.d))
	s.False(s.m.Match(query.FieldText{Path: "notes", Term: "leath"}, s.d))
	s.False(s.m.Match(query.FieldText{Path: "notes", Term: "  "}, s.d))

	s.True(s.m.Match(query.Text{Term: "journal"}, s.d))
	s.True(s.m.Match(query.Text{Term: "cm", Fields: []string{"size.uom"}}, s.d))
	// embedded strings are only searched when listed
	s.False(s.m.Match(query.Text{Term: "cm"}, s.d))
}

func (s *MatcherTestSuite) TestValidate() {
	s.NoError(s.m.Validate(query.And{Filters: []query.Filter{
		query.Eq{Path: "a.b", Value: doc.Int32(1)},
		query.Not{Filter: query.Regex{Path: "c", Pattern: "x"}},
	}}))

	var invalid domain.ErrInvalidArgument
	s.ErrorAs(s.m.Validate(query.Eq{Path: ""}), &invalid)
	s.ErrorAs(s.m.Validate(query.Eq{Path: "a..b"}), &invalid)
	s.Equal("a..b", invalid.Field)
	s.Equal("Eq", invalid.Operator)
	s.ErrorAs(s.m.Validate(query.Or{Filters: []query.Filter{query.Native{Value: 1}}}), &invalid)
	s.Equal("native", invalid.Operator)
	s.ErrorAs(s.m.Validate(query.Not{}), &invalid)
	s.ErrorAs(s.m.Validate(query.ArrSize{Path: "a", Size: -1}), &invalid)
	s.ErrorAs(s.m.Validate(query.Comp{Path: "a"}), &invalid)
	s.ErrorAs(s.m.Validate(query.Text{Term: "x", Fields: []string{""}}), &invalid)
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}
