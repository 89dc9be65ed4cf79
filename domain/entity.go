package domain

import (
	"strings"

	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// IndexKind tells how a path is indexed.
type IndexKind uint8

// Index kinds. NONE is accepted in definitions and means "not indexed".
const (
	IndexNone IndexKind = iota
	IndexIndexed
	IndexUnique
)

func (k IndexKind) String() string {
	switch k {
	case IndexIndexed:
		return "INDEXED"
	case IndexUnique:
		return "UNIQUE"
	}
	return "NONE"
}

// ParseIndexKind reads the names printed by [IndexKind.String], case
// insensitive.
func ParseIndexKind(s string) (IndexKind, bool) {
	switch strings.ToUpper(s) {
	case "NONE", "":
		return IndexNone, true
	case "INDEXED":
		return IndexIndexed, true
	case "UNIQUE":
		return IndexUnique, true
	}
	return IndexNone, false
}

// IndexDefinition describes a regular index over a dotted path.
type IndexDefinition struct {
	Path string
	Name string
	Kind IndexKind
}

// IndexList is the full index configuration of a collection.
type IndexList struct {
	Indexes     []IndexDefinition
	TextIndexes []string
}

// IDIndexName is the name of the unique index every collection keeps on _id.
const IDIndexName = "_id_"

// SortKey orders results by a dotted path.
type SortKey struct {
	Path       string
	Descending bool
}

// Asc sorts by path in ascending order.
func Asc(path string) SortKey { return SortKey{Path: path} }

// Desc sorts by path in descending order.
func Desc(path string) SortKey { return SortKey{Path: path, Descending: true} }

// PageCursor addresses a page of results. Page is 1-based.
type PageCursor struct {
	Page     int
	PageSize int
}

// Skip returns the number of documents before the page.
func (c PageCursor) Skip() int {
	return (c.Page - 1) * c.PageSize
}

// Page is a slice of results together with the total number of matches.
type Page struct {
	ItemCount int64
	Page      int
	PageSize  int
	Items     []*doc.Document
}

// PageCount returns the number of pages, never less than one.
func (p Page) PageCount() int {
	if p.PageSize <= 0 {
		return 1
	}
	n := int((p.ItemCount + int64(p.PageSize) - 1) / int64(p.PageSize))
	return max(1, n)
}

// Cursor returns the cursor of this page.
func (p Page) Cursor() PageCursor {
	return PageCursor{Page: p.Page, PageSize: p.PageSize}
}

// Next returns the cursor of the following page, clamped to the last one.
func (p Page) Next() PageCursor {
	return PageCursor{Page: min(p.Page+1, p.PageCount()), PageSize: p.PageSize}
}

// Previous returns the cursor of the preceding page, clamped to the first
// one.
func (p Page) Previous() PageCursor {
	return PageCursor{Page: max(1, min(p.Page-1, p.PageCount())), PageSize: p.PageSize}
}

// MapItems returns a copy of p with fn applied to every item.
func (p Page) MapItems(fn func(*doc.Document) *doc.Document) Page {
	items := make([]*doc.Document, len(p.Items))
	for n, d := range p.Items {
		items[n] = fn(d)
	}
	p.Items = items
	return p
}

// Plan type names reported by [Explanation].
const (
	PlanFullScan      = "FULL_SCAN"
	PlanIndexScan     = "INDEX_SCAN"
	PlanTextIndexScan = "TEXT_INDEX_SCAN"
	PlanComposite     = "COMPOSITE_PLAN"
)

// Explanation describes the plan chosen for a filter.
type Explanation struct {
	PlanType      string
	IndexesUsed   []string
	EstimatedCost float64
	Optimized     bool
	Details       map[string]any
}
