package models

import "time"

// KPIs contains the headline metrics for the current filter selection
type KPIs struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalOrders   int     `json:"total_orders"` // distinct invoices
	AvgOrderValue float64 `json:"avg_order_value"`
}

// DatasetInfo describes the loaded dataset
type DatasetInfo struct {
	SnapshotID   string    `json:"snapshot_id"`
	Countries    []string  `json:"countries"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	SalesCount   int       `json:"sales_count"`
	ReturnsCount int       `json:"returns_count"`
}

// CustomerRFM holds the Recency/Frequency/Monetary scores for one customer,
// computed over the currently filtered sales set
type CustomerRFM struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`   // days since last purchase
	Frequency  int     `json:"frequency"` // distinct invoices
	Monetary   float64 `json:"monetary"`
	Segment    string  `json:"segment"` // Low, Mid, High, VIP
}

// ParetoPoint is one point on the cumulative revenue concentration curve
type ParetoPoint struct {
	CustomerID           string  `json:"customer_id"`
	CustomerRankPct      float64 `json:"customer_rank_pct"`
	CumulativeRevenuePct float64 `json:"cumulative_revenue_pct"`
}

// SeriesPoint is an ordered (key, value) pair produced by an aggregation
type SeriesPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ChartData represents one series handed to the rendering layer
type ChartData struct {
	Type   string      `json:"type"` // bar, line, scatter, choropleth
	X      interface{} `json:"x"`
	Y      interface{} `json:"y"`
	Name   string      `json:"name"`
	Mode   string      `json:"mode,omitempty"` // for scatter: lines, markers, lines+markers
	Text   []string    `json:"text,omitempty"` // per-point hover labels
	Sizes  []float64   `json:"sizes,omitempty"`
	Labels []string    `json:"labels,omitempty"`
}

// ChartResponse wraps chart data with layout options
type ChartResponse struct {
	Data   []ChartData `json:"data"`
	Layout ChartLayout `json:"layout,omitempty"`
}

// ChartLayout defines layout hints for the rendering layer
type ChartLayout struct {
	Title      string `json:"title,omitempty"`
	XAxisTitle string `json:"xaxis_title,omitempty"`
	YAxisTitle string `json:"yaxis_title,omitempty"`
	LogY       bool   `json:"log_y,omitempty"`
}
