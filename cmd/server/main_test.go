package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/config"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/testutil"
)

// setupTestServer initializes dependencies against testdata and returns a test server
func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()

	cfg := &config.Config{
		ListenAddr:    ":0",
		Debug:         true,
		DataDirectory: testutil.TestDataDir(),
		DatasetFile:   "retail_sample.csv",
	}

	log = zerolog.Nop()

	if err := SetupDependencies(cfg); err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}

	router := SetupRouter()
	return testutil.NewTestServer(t, router)
}

// TestHealthEndpoint tests the /api/health endpoint
func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

// TestVersionEndpoint tests the /api/version endpoint
func TestVersionEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/version")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"version"`)
}

// TestRootRedirect tests that / redirects to /dashboard
func TestRootRedirect(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	// Don't follow redirects
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.BaseURL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location != "/dashboard" {
		t.Errorf("Expected redirect to /dashboard, got %s", location)
	}
}

// TestDashboard tests the dashboard summary endpoint
func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(
			`"kpis"`,
			`"dataset"`,
			`"sales_count":15`,
			`"returns_count":2`,
			"France",
			"Germany",
			"United Kingdom",
		)
}

// TestDashboardKPIs tests the KPIs endpoint
func TestDashboardKPIs(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/kpis")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(
			`"total_revenue"`,
			`"total_orders"`,
			`"avg_order_value"`,
		)
}

// TestDashboardKPIsCountryFilter tests KPIs for a single-country selection
func TestDashboardKPIsCountryFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	// Two French invoices in the sample: 24 x 3.75 and 8 x 1.25
	resp := ts.GET("/dashboard/kpis?country=France")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(
			`"total_revenue":100`,
			`"total_orders":2`,
			`"avg_order_value":50`,
		)
}

// TestCountriesEndpoint tests the country list endpoint
func TestCountriesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/countries")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll("France", "Germany", "United Kingdom")
}

// TestDashboardChartData tests every chart data endpoint
func TestDashboardChartData(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	chartTypes := []string{
		"monthly",
		"products",
		"countries",
		"hourly",
		"returns",
		"aov",
		"retention",
		"weekday",
		"rfm",
		"pareto",
	}

	for _, chartType := range chartTypes {
		t.Run(chartType, func(t *testing.T) {
			resp := ts.GET("/dashboard/charts/data/" + chartType)
			testutil.AssertResponse(t, resp).
				StatusOK().
				ContentTypeJSON()

			// Verify it's valid JSON with a data series
			body := testutil.ReadBody(t, resp)
			var data struct {
				Data []interface{} `json:"data"`
			}
			if err := json.Unmarshal([]byte(body), &data); err != nil {
				t.Errorf("Invalid JSON for chart %s: %v", chartType, err)
			}
		})
	}
}

// TestUnknownChartType tests that unrecognized chart names are rejected
func TestUnknownChartType(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/charts/data/bogus")
	testutil.AssertResponse(t, resp).
		Status(http.StatusBadRequest).
		Contains("unknown chart type")
}

// TestCountryChartIgnoresFilter tests that the geographic chart shows all markets
func TestCountryChartIgnoresFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/charts/data/countries?country=France")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContainsAll("France", "Germany", "United Kingdom")
}

// TestExportCSV tests the filtered export download
func TestExportCSV(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/export")

	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="filtered_sales_data.csv"` {
		t.Errorf("Unexpected Content-Disposition: %q", cd)
	}
	if snapshot := resp.Header.Get("X-Dataset-Snapshot"); snapshot == "" {
		t.Error("Expected X-Dataset-Snapshot header")
	}

	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeCSV().
		ContainsAll(
			"Invoice,StockCode,Description,Quantity,Price",
			"WHITE HANGING HEART T-LIGHT HOLDER",
		).
		// Cleaning drops the returns, the zero-quantity row and the
		// row with no customer
		NotContains("PACK OF 12 PINK PAISLEY TISSUES").
		NotContains("CHOCOLATE HOT WATER BOTTLE").
		NotContains("JAM MAKING SET WITH JARS")
}

// TestExportCSVCountryFilter tests that the export honors the country selection
func TestExportCSVCountryFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/dashboard/export?country=Germany")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeCSV().
		ContainsAll(
			"INFLATABLE POLITICAL GLOBE",
			"HAND WARMER RED POLKA DOT",
		).
		NotContains("ALARM CLOCK BAKELIKE PINK").
		NotContains("WHITE METAL LANTERN")
}
