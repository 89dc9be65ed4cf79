package optimizer

import (
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Cost multipliers applied to the expected number of results.
const (
	FullScanCostFactor  = 1.0
	IndexScanCostFactor = 1.1
	TextScanCostFactor  = 1.2
	CompositeCostFactor = 1.05
)

// Plan is the strategy chosen to find the documents matching a filter. The
// set of implementations is closed.
type Plan interface {
	// EstimatedCost returns the relative cost of running the plan.
	EstimatedCost() float64
	plan()
}

// FullScan evaluates Filter against every document. A nil Filter matches
// all of them.
type FullScan struct {
	Filter        query.Filter
	DocumentCount int
}

// IndexScan fetches candidates from a regular index and checks them against
// IndexedFilter and RemainingFilter.
type IndexScan struct {
	Index           domain.IndexDefinition
	IndexedFilter   query.FieldFilter
	RemainingFilter query.Filter
	ExpectedResults int
}

// TextIndexScan fetches candidates from the text index of TextFilter.Path and
// checks them against TextFilter and RemainingFilter.
type TextIndexScan struct {
	Fields          []string
	TextFilter      query.FieldText
	RemainingFilter query.Filter
	ExpectedResults int
}

// CompositePlan intersects several scans. The optimizer never produces it.
type CompositePlan struct {
	IndexScans      []IndexScan
	TextScans       []TextIndexScan
	RemainingFilter query.Filter
	ExpectedResults int
}

func (FullScan) plan()      {}
func (IndexScan) plan()     {}
func (TextIndexScan) plan() {}
func (CompositePlan) plan() {}

// EstimatedCost implements [Plan].
func (p FullScan) EstimatedCost() float64 {
	return float64(p.DocumentCount) * FullScanCostFactor
}

// EstimatedCost implements [Plan].
func (p IndexScan) EstimatedCost() float64 {
	return float64(p.ExpectedResults) * IndexScanCostFactor
}

// EstimatedCost implements [Plan].
func (p TextIndexScan) EstimatedCost() float64 {
	return float64(p.ExpectedResults) * TextScanCostFactor
}

// EstimatedCost implements [Plan].
func (p CompositePlan) EstimatedCost() float64 {
	return float64(p.ExpectedResults) * CompositeCostFactor
}
