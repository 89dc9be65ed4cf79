package querier

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

type QuerierTestSuite struct {
	suite.Suite
	q    domain.Querier
	docs []*doc.Document
}

func (s *QuerierTestSuite) SetupTest() {
	s.q = NewQuerier()
	item := func(id int32, name string, qty doc.Value) *doc.Document {
		d := doc.New(
			doc.E{Key: "_id", Value: doc.Int32(id)},
			doc.E{Key: "name", Value: doc.String(name)},
		)
		if qty.Kind() != doc.KindBool {
			d.Set("qty", qty)
		}
		return d
	}
	s.docs = []*doc.Document{
		item(1, "pen", doc.Int32(10)),
		item(2, "ink", doc.Double(2.5)),
		item(3, "cup", doc.Bool(false)),
		item(4, "box", doc.Null()),
		item(5, "pen", doc.Int64(2)),
	}
}

func (s *QuerierTestSuite) ids(docs []*doc.Document) []int64 {
	res := make([]int64, len(docs))
	for n, d := range docs {
		id, _ := d.ID()
		res[n], _ = id.AsInt64()
	}
	return res
}

// Will keep insertion order without sort keys.
func (s *QuerierTestSuite) TestNoOptions() {
	res := s.q.Query(s.docs, domain.FindOptions{})
	s.Equal([]int64{1, 2, 3, 4, 5}, s.ids(res))
}

// Will place absent values before null and numbers by value.
func (s *QuerierTestSuite) TestSortAscending() {
	res := s.q.Query(s.docs, domain.NewFindOptions(domain.WithSortAsc("qty")))
	s.Equal([]int64{3, 4, 5, 2, 1}, s.ids(res))
	s.Equal([]int64{1, 2, 3, 4, 5}, s.ids(s.docs))
}

func (s *QuerierTestSuite) TestSortDescending() {
	res := s.q.Query(s.docs, domain.NewFindOptions(domain.WithSortDesc("qty")))
	s.Equal([]int64{1, 2, 5, 4, 3}, s.ids(res))
}

// Will use later keys only to break ties and keep input order otherwise.
func (s *QuerierTestSuite) TestMultiKeyStable() {
	res := s.q.Query(s.docs, domain.NewFindOptions(domain.WithSortAsc("name")))
	s.Equal([]int64{4, 3, 2, 1, 5}, s.ids(res))

	res = s.q.Query(s.docs, domain.NewFindOptions(
		domain.WithSortAsc("name"),
		domain.WithSortDesc("_id"),
	))
	s.Equal([]int64{4, 3, 2, 5, 1}, s.ids(res))
}

func (s *QuerierTestSuite) TestSkipAndLimit() {
	res := s.q.Query(s.docs, domain.NewFindOptions(domain.WithSkip(1), domain.WithLimit(2)))
	s.Equal([]int64{2, 3}, s.ids(res))

	res = s.q.Query(s.docs, domain.NewFindOptions(domain.WithSkip(4), domain.WithLimit(10)))
	s.Equal([]int64{5}, s.ids(res))

	res = s.q.Query(s.docs, domain.NewFindOptions(domain.WithSkip(10)))
	s.Empty(res)

	res = s.q.Query(s.docs, domain.NewFindOptions(domain.WithSkip(-1), domain.WithLimit(0)))
	s.Len(res, 5)
}

// Will project after sorting so sort keys need not be projected.
func (s *QuerierTestSuite) TestProjection() {
	res := s.q.Query(s.docs, domain.NewFindOptions(
		domain.WithSortDesc("qty"),
		domain.WithLimit(1),
		domain.WithFields("name"),
	))
	s.Require().Len(res, 1)
	s.Equal(`{"_id":1,"name":"pen"}`, res[0].String())
}

func TestQuerierTestSuite(t *testing.T) {
	suite.Run(t, new(QuerierTestSuite))
}
