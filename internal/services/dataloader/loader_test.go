package dataloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/storage"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Invoice variations across export generations
		{"Invoice", "Invoice"},
		{"InvoiceNo", "Invoice"},
		{"invoice", "Invoice"},

		// Price variations
		{"Price", "Price"},
		{"UnitPrice", "Price"},
		{"Unit Price", "Price"},

		// Customer ID variations
		{"Customer ID", "CustomerID"},
		{"CustomerID", "CustomerID"},
		{"customer_id", "CustomerID"},

		{"StockCode", "StockCode"},
		{"Stock Code", "StockCode"},
		{"InvoiceDate", "InvoiceDate"},
		{"Invoice Date", "InvoiceDate"},
		{"Quantity", "Quantity"},
		{"Country", "Country"},

		// Unknown columns should pass through unchanged
		{"Unknown Column", "Unknown Column"},
		{"Balance", "Balance"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := normalizeColumnName(tt.input)
			if result != tt.expected {
				t.Errorf("normalizeColumnName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeCustomerID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"17850.0", "17850", true},
		{"17850", "17850", true},
		{"13047.00", "13047", true},
		{"00123", "123", true},
		{"", "", false},
		{"abc", "", false},
		{"NaN", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, ok := normalizeCustomerID(tt.input)
			if ok != tt.ok {
				t.Fatalf("normalizeCustomerID(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && result != tt.expected {
				t.Errorf("normalizeCustomerID(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2010-12-01 08:26:00", time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)},
		{"12/1/2010 08:26", time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)},
		{"2010-12-01", time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseTimestamp(tt.input)
			if !result.Equal(tt.expected) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

// newTestLoader writes a dataset file and returns a loader pointing at it
func newTestLoader(t *testing.T, content []byte) *DataLoader {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "retail.csv")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write dataset: %v", err)
	}

	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	return New(path, store, zerolog.Nop())
}

func TestLoadCleansAndPartitions(t *testing.T) {
	content := []byte(`Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country
1,A1,RED MUG,2,2023-01-01 10:00:00,10.00,100.0,United Kingdom
1,A1,RED MUG,-1,2023-01-02 10:00:00,10.00,100.0,United Kingdom
2,B2,BLUE MUG,3,2023-01-03 10:00:00,5.00,,United Kingdom
3,C3,GREEN MUG,0,2023-01-03 11:00:00,5.00,101.0,United Kingdom
`)

	loader := newTestLoader(t, content)
	sales, returns, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sales.Len() != 1 {
		t.Fatalf("Expected 1 sale, got %d", sales.Len())
	}
	if returns.Len() != 1 {
		t.Fatalf("Expected 1 return, got %d", returns.Len())
	}
	if loader.DroppedNoCustomer != 1 {
		t.Errorf("Expected 1 row dropped for missing customer, got %d", loader.DroppedNoCustomer)
	}
	if loader.DroppedZeroQty != 1 {
		t.Errorf("Expected 1 zero-quantity row dropped, got %d", loader.DroppedZeroQty)
	}

	sale := sales.Transactions[0]
	if sale.CustomerID != "100" {
		t.Errorf("Expected canonical customer ID 100, got %q", sale.CustomerID)
	}
	if sale.TotalAmount != 20.0 {
		t.Errorf("Expected TotalAmount 20, got %v", sale.TotalAmount)
	}
	if sale.MonthYear != "2023-01" {
		t.Errorf("Expected MonthYear 2023-01, got %q", sale.MonthYear)
	}
	if sale.Hour != 10 {
		t.Errorf("Expected Hour 10, got %d", sale.Hour)
	}
	if sale.DayOfWeek != "Sunday" {
		t.Errorf("Expected DayOfWeek Sunday, got %q", sale.DayOfWeek)
	}

	ret := returns.Transactions[0]
	if ret.Quantity != 1 {
		t.Errorf("Expected return quantity normalized to 1, got %d", ret.Quantity)
	}
	if ret.TotalAmount != -10.0 {
		t.Errorf("Expected return TotalAmount -10, got %v", ret.TotalAmount)
	}
}

func TestLoadPartitionsAreDisjoint(t *testing.T) {
	content := []byte(`Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country
1,A1,RED MUG,2,2023-01-01 10:00:00,10.00,100.0,United Kingdom
2,A1,RED MUG,-2,2023-01-01 11:00:00,10.00,100.0,United Kingdom
3,B2,BLUE MUG,5,2023-01-02 10:00:00,2.00,101.0,France
`)

	loader := newTestLoader(t, content)
	sales, returns, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Every cleaned record ends up in exactly one partition with positive quantity
	seen := make(map[string]bool)
	for _, tr := range sales.Transactions {
		seen[tr.Invoice] = true
		if tr.Quantity <= 0 {
			t.Errorf("Sale %s has non-positive quantity %d", tr.Invoice, tr.Quantity)
		}
	}
	for _, tr := range returns.Transactions {
		if seen[tr.Invoice] {
			t.Errorf("Invoice %s appears in both partitions", tr.Invoice)
		}
		if tr.Quantity <= 0 {
			t.Errorf("Return %s has non-positive quantity %d", tr.Invoice, tr.Quantity)
		}
	}
}

func TestLoadOldExportHeaders(t *testing.T) {
	content := []byte(`InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,85123A,WHITE HANGING HEART T-LIGHT HOLDER,6,12/1/2010 08:26,2.55,17850,United Kingdom
`)

	loader := newTestLoader(t, content)
	sales, _, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sales.Len() != 1 {
		t.Fatalf("Expected 1 sale, got %d", sales.Len())
	}
	if sales.Transactions[0].Invoice != "536365" {
		t.Errorf("Expected invoice 536365, got %q", sales.Transactions[0].Invoice)
	}
	if sales.Transactions[0].Price != 2.55 {
		t.Errorf("Expected price 2.55, got %v", sales.Transactions[0].Price)
	}
}

func TestLoadToleratesLatin1Bytes(t *testing.T) {
	// 0xA3 is the pound sign in Latin-1 and invalid as a UTF-8 start byte
	content := []byte("Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country\n" +
		"1,A1,MUG \xa3 SPECIAL,2,2023-01-01 10:00:00,10.00,100.0,United Kingdom\n")

	loader := newTestLoader(t, content)
	sales, _, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sales.Len() != 1 {
		t.Fatalf("Expected 1 sale, got %d", sales.Len())
	}
	if sales.Transactions[0].Description != "MUG £ SPECIAL" {
		t.Errorf("Expected lossy-decoded description, got %q", sales.Transactions[0].Description)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	loader := New(filepath.Join(dir, "does-not-exist.csv"), store, zerolog.Nop())
	sales, returns, err := loader.Load()

	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Expected ErrDataUnavailable, got %v", err)
	}
	if sales.Len() != 0 || returns.Len() != 0 {
		t.Errorf("Expected empty partitions on failure, got %d sales and %d returns", sales.Len(), returns.Len())
	}
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	content := []byte(`Invoice,StockCode,Description,Quantity,InvoiceDate,Price
1,A1,RED MUG,2,2023-01-01 10:00:00,10.00
`)

	loader := newTestLoader(t, content)
	_, _, err := loader.Load()
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Expected ErrDataUnavailable for missing column, got %v", err)
	}
}

func TestLoadIsCached(t *testing.T) {
	content := []byte(`Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country
1,A1,RED MUG,2,2023-01-01 10:00:00,10.00,100.0,United Kingdom
`)

	loader := newTestLoader(t, content)
	sales1, _, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	snapshot1 := loader.SnapshotID()
	if snapshot1 == "" {
		t.Fatal("Expected a snapshot ID after load")
	}

	// Rewrite the source; the cache must not notice
	if err := os.WriteFile(loader.DatasetPath, []byte("Invoice\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite dataset: %v", err)
	}

	sales2, _, err := loader.Load()
	if err != nil {
		t.Fatalf("Cached load failed: %v", err)
	}
	if sales2.Len() != sales1.Len() {
		t.Errorf("Cached load returned different data: %d vs %d", sales2.Len(), sales1.Len())
	}
	if loader.SnapshotID() != snapshot1 {
		t.Errorf("Snapshot ID changed on cached load")
	}

	// After invalidation the corrupted source must surface
	loader.Invalidate()
	if _, _, err := loader.Load(); err == nil {
		t.Error("Expected error after invalidation against corrupted source")
	}
}
