// Package dashboard serves the analytics API consumed by the rendering
// layer: KPIs, the ten chart datasets and the filtered CSV export.
package dashboard

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httputil "github.com/Bright579523/data-analytics-onlineRetail/internal/http"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/models"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/dataloader"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/metrics"
)

var (
	loader  *dataloader.DataLoader
	metrSvc *metrics.Service
	log     zerolog.Logger
)

// Initialize sets up the dashboard package with required dependencies
func Initialize(l *dataloader.DataLoader, m *metrics.Service, lg zerolog.Logger) {
	loader = l
	metrSvc = m
	log = lg
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", handleDashboard)
	r.Get("/dashboard/kpis", handleKPIs)
	r.Get("/dashboard/countries", handleCountries)
	r.Get("/dashboard/charts/data/{chartType}", handleChartData)
	r.Get("/dashboard/export", handleExport)
}

// loadFiltered loads the cached partitions and applies the request's country
// selection to both
func loadFiltered(r *http.Request) (sales, returns *models.TransactionSet, err error) {
	allSales, allReturns, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	countries := httputil.ParseCountries(r)
	return allSales.FilterByCountries(countries), allReturns.FilterByCountries(countries), nil
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	allSales, allReturns, err := loader.Load()
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	countries := httputil.ParseCountries(r)
	filtered := allSales.FilterByCountries(countries)

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset": models.DatasetInfo{
			SnapshotID:   loader.SnapshotID(),
			Countries:    allSales.Countries(),
			StartDate:    allSales.MinInvoiceDate(),
			EndDate:      allSales.MaxInvoiceDate(),
			SalesCount:   allSales.Len(),
			ReturnsCount: allReturns.Len(),
		},
		"kpis":               metrSvc.ComputeKPIs(filtered),
		"selected_countries": countries,
	})
}

func handleKPIs(w http.ResponseWriter, r *http.Request) {
	sales, _, err := loadFiltered(r)
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, metrSvc.ComputeKPIs(sales))
}

func handleCountries(w http.ResponseWriter, r *http.Request) {
	sales, _, err := loader.Load()
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"countries": sales.Countries(),
	})
}

func handleChartData(w http.ResponseWriter, r *http.Request) {
	chartType := chi.URLParam(r, "chartType")

	allSales, _, err := loader.Load()
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	sales, returns, err := loadFiltered(r)
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	var chartData interface{}

	switch chartType {
	case "monthly":
		chartData = seriesChart("line", "Monthly Revenue Trend", metrSvc.MonthlyRevenue(sales))
	case "products":
		chartData = seriesChart("bar", "Top 10 Best Sellers", metrSvc.TopProducts(sales))
	case "countries":
		// The geographic chart always shows the full market, not the filtered one
		chartData = seriesChart("choropleth", "Global Sales", metrSvc.CountrySales(allSales))
	case "hourly":
		chartData = seriesChart("bar", "Sales by Hour", metrSvc.HourlySales(sales))
	case "returns":
		chartData = seriesChart("bar", "Top 10 Returned Items", metrSvc.TopReturns(returns))
	case "aov":
		chartData = seriesChart("bar", "Average Order Value by Country", metrSvc.AOVByCountry(sales))
	case "retention":
		chartData = seriesChart("line", "Monthly Active Customers", metrSvc.MonthlyActiveCustomers(sales))
	case "weekday":
		chartData = seriesChart("bar", "Revenue by Weekday", metrSvc.WeekdayRevenue(sales))
	case "rfm":
		chartData = rfmChart(metrSvc.ComputeRFM(sales))
	case "pareto":
		chartData = paretoChart(metrSvc.ComputePareto(metrSvc.ComputeRFM(sales)))
	default:
		httputil.ErrorResponse(w, log, "unknown chart type", http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, chartData)
}

// seriesChart wraps a key/value series in the rendering contract
func seriesChart(chartType, title string, points []models.SeriesPoint) models.ChartResponse {
	keys := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		keys[i] = p.Key
		values[i] = p.Value
	}

	return models.ChartResponse{
		Data: []models.ChartData{{
			Type: chartType,
			X:    keys,
			Y:    values,
			Name: title,
		}},
		Layout: models.ChartLayout{Title: title},
	}
}

// rfmChart builds the segmentation scatter: recency vs monetary, point size
// from frequency, one series per segment
func rfmChart(rfm []models.CustomerRFM) models.ChartResponse {
	bySegment := make(map[string]*models.ChartData)
	var order []string

	for _, r := range rfm {
		series := bySegment[r.Segment]
		if series == nil {
			series = &models.ChartData{
				Type: "scatter",
				Mode: "markers",
				Name: r.Segment,
				X:    []float64{},
				Y:    []float64{},
			}
			bySegment[r.Segment] = series
			order = append(order, r.Segment)
		}
		series.X = append(series.X.([]float64), float64(r.Recency))
		series.Y = append(series.Y.([]float64), r.Monetary)
		series.Sizes = append(series.Sizes, float64(r.Frequency))
		series.Text = append(series.Text, r.CustomerID)
	}

	data := make([]models.ChartData, 0, len(order))
	for _, segment := range order {
		data = append(data, *bySegment[segment])
	}

	return models.ChartResponse{
		Data: data,
		Layout: models.ChartLayout{
			Title:      "Customer Segmentation (RFM)",
			XAxisTitle: "Recency",
			YAxisTitle: "Monetary",
			LogY:       true,
		},
	}
}

// paretoChart builds the cumulative concentration curve
func paretoChart(points []models.ParetoPoint) models.ChartResponse {
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.CustomerRankPct
		y[i] = p.CumulativeRevenuePct
	}

	return models.ChartResponse{
		Data: []models.ChartData{{
			Type: "line",
			X:    x,
			Y:    y,
			Name: "Pareto Analysis",
		}},
		Layout: models.ChartLayout{
			Title:      "Pareto Analysis",
			XAxisTitle: "% Customers",
			YAxisTitle: "% Revenue",
		},
	}
}

// exportColumns mirrors the cleaned transaction fields
var exportColumns = []string{
	"Invoice", "StockCode", "Description", "Quantity", "Price",
	"InvoiceDate", "Customer ID", "Country", "TotalAmount",
	"MonthYear", "Hour", "DayOfWeek",
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	sales, _, err := loadFiltered(r)
	if err != nil {
		httputil.ErrorResponse(w, log, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_sales_data.csv"`)
	w.Header().Set("X-Dataset-Snapshot", loader.SnapshotID())

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		log.Error().Err(err).Msg("export write failed")
		return
	}

	for _, t := range sales.SortByDate().Transactions {
		row := []string{
			t.Invoice,
			t.StockCode,
			t.Description,
			strconv.Itoa(t.Quantity),
			fmt.Sprintf("%.2f", t.Price),
			t.InvoiceDate.Format("2006-01-02 15:04:05"),
			t.CustomerID,
			t.Country,
			fmt.Sprintf("%.2f", t.TotalAmount),
			t.MonthYear,
			strconv.Itoa(t.Hour),
			t.DayOfWeek,
		}
		if err := cw.Write(row); err != nil {
			log.Error().Err(err).Msg("export write failed")
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error().Err(err).Msg("export flush failed")
	}
}
