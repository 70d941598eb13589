package metrics

import (
	"sort"
	"time"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/models"
)

// segmentLabels in ascending order of Monetary
var segmentLabels = []string{"Low", "Mid", "High", "VIP"}

// ComputeRFM scores every customer in the sales set. The snapshot date is
// fixed to one day past the latest invoice date in the set, so Recency is
// always at least 1. Returns nil on an empty set (the snapshot date would be
// undefined); callers treat that as an empty result, not an error.
func (s *Service) ComputeRFM(sales *models.TransactionSet) []models.CustomerRFM {
	if sales.Len() == 0 {
		return nil
	}

	snapshotDate := sales.MaxInvoiceDate().AddDate(0, 0, 1)

	type customerStats struct {
		lastInvoice time.Time
		invoices    map[string]bool
		monetary    float64
	}

	stats := make(map[string]*customerStats)
	for _, t := range sales.Transactions {
		cs := stats[t.CustomerID]
		if cs == nil {
			cs = &customerStats{invoices: make(map[string]bool)}
			stats[t.CustomerID] = cs
		}
		if t.InvoiceDate.After(cs.lastInvoice) {
			cs.lastInvoice = t.InvoiceDate
		}
		cs.invoices[t.Invoice] = true
		cs.monetary += t.TotalAmount
	}

	rfm := make([]models.CustomerRFM, 0, len(stats))
	for customerID, cs := range stats {
		recency := int(snapshotDate.Sub(cs.lastInvoice).Hours() / 24)
		rfm = append(rfm, models.CustomerRFM{
			CustomerID: customerID,
			Recency:    recency,
			Frequency:  len(cs.invoices),
			Monetary:   cs.monetary,
		})
	}

	sort.Slice(rfm, func(i, j int) bool { return rfm[i].CustomerID < rfm[j].CustomerID })

	assignSegments(rfm)
	return rfm
}

// assignSegments buckets customers into quartiles of Monetary. Duplicate
// quartile boundaries collapse to fewer buckets, so low-cardinality or
// heavily tied inputs may use fewer than four labels.
func assignSegments(rfm []models.CustomerRFM) {
	values := make([]float64, len(rfm))
	for i, r := range rfm {
		values[i] = r.Monetary
	}
	sort.Float64s(values)

	edges := quartileEdges(values)
	bins := len(edges) - 1
	if bins < 1 {
		for i := range rfm {
			rfm[i].Segment = segmentLabels[0]
		}
		return
	}

	labels := segmentLabels[:bins]
	for i, r := range rfm {
		rfm[i].Segment = labels[bucketOf(r.Monetary, edges)]
	}
}

// quartileEdges returns the deduplicated bin edges [min, q1, q2, q3, max]
func quartileEdges(sorted []float64) []float64 {
	raw := []float64{
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.50),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}

	edges := raw[:1]
	for _, e := range raw[1:] {
		if e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	return edges
}

// quantile computes the q-th quantile of a sorted slice using linear
// interpolation between closest ranks
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// bucketOf returns the bin index of v for the given edges. Bins are
// right-inclusive; the lowest bin also includes its left edge.
func bucketOf(v float64, edges []float64) int {
	for i := 1; i < len(edges)-1; i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

// ComputePareto builds the cumulative revenue concentration curve: customers
// ranked by Monetary descending, each point carrying the running revenue
// share. Verifies the 80/20 property visually downstream.
func (s *Service) ComputePareto(rfm []models.CustomerRFM) []models.ParetoPoint {
	if len(rfm) == 0 {
		return nil
	}

	ranked := make([]models.CustomerRFM, len(rfm))
	copy(ranked, rfm)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Monetary != ranked[j].Monetary {
			return ranked[i].Monetary > ranked[j].Monetary
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})

	var total float64
	for _, r := range ranked {
		total += r.Monetary
	}

	points := make([]models.ParetoPoint, len(ranked))
	var running float64
	for i, r := range ranked {
		running += r.Monetary

		var revenuePct float64
		if total != 0 {
			revenuePct = 100 * running / total
		}

		points[i] = models.ParetoPoint{
			CustomerID:           r.CustomerID,
			CustomerRankPct:      100 * float64(i+1) / float64(len(ranked)),
			CumulativeRevenuePct: revenuePct,
		}
	}

	return points
}
