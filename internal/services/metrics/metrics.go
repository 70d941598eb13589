// Package metrics derives the dashboard aggregates from the cleaned
// transaction partitions.
package metrics

import (
	"sort"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/models"
)

// Service provides metric calculation functionality
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// ComputeKPIs computes the headline metrics over a sales set
func (s *Service) ComputeKPIs(sales *models.TransactionSet) models.KPIs {
	totalRevenue := sales.SumTotalAmount()
	totalOrders := sales.DistinctInvoices()

	var avgOrderValue float64
	if totalOrders > 0 {
		avgOrderValue = totalRevenue / float64(totalOrders)
	}

	return models.KPIs{
		TotalRevenue:  totalRevenue,
		TotalOrders:   totalOrders,
		AvgOrderValue: avgOrderValue,
	}
}

// Aggregation selects how grouped values are combined
type Aggregation int

const (
	AggSum Aggregation = iota
	AggMean
	AggCount
)

// GroupedAggregate groups transactions by key and applies the aggregation to
// the extracted metric. Results are sorted by key ascending; callers re-sort
// or reindex as needed.
func (s *Service) GroupedAggregate(ts *models.TransactionSet, key func(models.Transaction) string, value func(models.Transaction) float64, agg Aggregation) []models.SeriesPoint {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, t := range ts.Transactions {
		k := key(t)
		sums[k] += value(t)
		counts[k]++
	}

	points := make([]models.SeriesPoint, 0, len(sums))
	for k := range sums {
		var v float64
		switch agg {
		case AggSum:
			v = sums[k]
		case AggMean:
			v = sums[k] / float64(counts[k])
		case AggCount:
			v = float64(counts[k])
		}
		points = append(points, models.SeriesPoint{Key: k, Value: v})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
	return points
}

// GroupedNUnique groups transactions by key and counts distinct values of the
// id dimension per group. The categorical counterpart of GroupedAggregate.
func (s *Service) GroupedNUnique(ts *models.TransactionSet, key func(models.Transaction) string, id func(models.Transaction) string) []models.SeriesPoint {
	distinct := make(map[string]map[string]bool)

	for _, t := range ts.Transactions {
		k := key(t)
		if distinct[k] == nil {
			distinct[k] = make(map[string]bool)
		}
		distinct[k][id(t)] = true
	}

	points := make([]models.SeriesPoint, 0, len(distinct))
	for k, ids := range distinct {
		points = append(points, models.SeriesPoint{Key: k, Value: float64(len(ids))})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
	return points
}

// TopN returns the n highest-valued points, sorted by value descending.
// Ties break by key for determinism.
func TopN(points []models.SeriesPoint, n int) []models.SeriesPoint {
	sorted := make([]models.SeriesPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Key < sorted[j].Key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
