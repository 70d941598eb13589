// Package dataloader loads the retail transactions dataset, cleans it and
// derives the Sales/Returns partitions every downstream aggregate consumes.
package dataloader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/models"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/storage"
)

// ErrDataUnavailable is returned when the dataset file cannot be located or
// read. Callers must halt further processing; no aggregate can be computed
// without the dataset.
var ErrDataUnavailable = errors.New("dataset unavailable")

// DataLoader loads and preprocesses the retail transactions dataset. The
// cleaned partitions are cached for the process lifetime; invalidation only
// happens on restart (or explicitly, in tests).
type DataLoader struct {
	DatasetPath string

	store *storage.Storage
	log   zerolog.Logger

	mu         sync.Mutex
	loaded     bool
	snapshotID string
	sales      *models.TransactionSet
	returns    *models.TransactionSet

	// Cleaning counters from the last load
	DroppedNoCustomer int
	DroppedZeroQty    int
	DroppedBadRows    int
}

// columnMappings maps the column names of both Online Retail export
// generations to our standard names
var columnMappings = map[string][]string{
	"Invoice": {
		"Invoice", "invoice", "INVOICE",
		"InvoiceNo", "Invoice No", "invoice_no",
	},
	"StockCode": {
		"StockCode", "Stock Code", "stockcode", "stock_code",
	},
	"Description": {
		"Description", "description", "DESCRIPTION",
	},
	"Quantity": {
		"Quantity", "quantity", "QUANTITY", "Qty", "qty",
	},
	"InvoiceDate": {
		"InvoiceDate", "Invoice Date", "invoice_date", "invoicedate",
	},
	"Price": {
		"Price", "price", "PRICE",
		"UnitPrice", "Unit Price", "unit_price",
	},
	"CustomerID": {
		"Customer ID", "CustomerID", "customer_id", "customerid", "Customer Id",
	},
	"Country": {
		"Country", "country", "COUNTRY",
	},
}

// New creates a new DataLoader
func New(datasetPath string, store *storage.Storage, log zerolog.Logger) *DataLoader {
	return &DataLoader{
		DatasetPath: datasetPath,
		store:       store,
		log:         log,
	}
}

// normalizeColumnName maps an export column name to our standard name
func normalizeColumnName(col string) string {
	col = strings.TrimSpace(col)
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if col == variant {
				return standard
			}
		}
	}
	return col // Return original if no mapping found
}

// buildColumnIndex creates a normalized column index from CSV headers
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		// First match wins
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// Load returns the cleaned Sales and Returns partitions. The first call
// reads and parses the dataset; subsequent calls return the cached result.
// On ErrDataUnavailable both partitions are empty.
func (dl *DataLoader) Load() (*models.TransactionSet, *models.TransactionSet, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.loaded {
		return dl.sales, dl.returns, nil
	}

	data, err := dl.store.ReadFile(dl.DatasetPath)
	if err != nil {
		dl.log.Error().Err(err).Str("path", dl.DatasetPath).Msg("could not read dataset")
		return models.NewTransactionSet(nil), models.NewTransactionSet(nil),
			fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	sales, returns, err := dl.parseDataset(data)
	if err != nil {
		return models.NewTransactionSet(nil), models.NewTransactionSet(nil),
			fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	dl.sales = sales
	dl.returns = returns
	dl.snapshotID = uuid.New().String()
	dl.loaded = true

	dl.log.Info().
		Str("snapshot", dl.snapshotID).
		Int("sales", sales.Len()).
		Int("returns", returns.Len()).
		Int("dropped_no_customer", dl.DroppedNoCustomer).
		Int("dropped_zero_qty", dl.DroppedZeroQty).
		Int("dropped_bad_rows", dl.DroppedBadRows).
		Msg("dataset loaded")

	return dl.sales, dl.returns, nil
}

// SnapshotID identifies the currently cached load
func (dl *DataLoader) SnapshotID() string {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.snapshotID
}

// Invalidate drops the cached dataset so the next Load re-reads the source.
// Only used by tests; production invalidation is process restart.
func (dl *DataLoader) Invalidate() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.loaded = false
	dl.sales = nil
	dl.returns = nil
	dl.snapshotID = ""
}

// parseDataset cleans the raw records and partitions them by quantity sign
func (dl *DataLoader) parseDataset(data []byte) (*models.TransactionSet, *models.TransactionSet, error) {
	dl.DroppedNoCustomer = 0
	dl.DroppedZeroQty = 0
	dl.DroppedBadRows = 0

	reader := csv.NewReader(strings.NewReader(decodeDataset(data)))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	for _, required := range []string{"Invoice", "Quantity", "InvoiceDate", "Price", "CustomerID", "Country"} {
		if _, ok := colIndex[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s (tried: %v)", required, columnMappings[required])
		}
	}

	field := func(record []string, name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var sales, returns []models.Transaction
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dl.log.Warn().Int("line", lineNum+1).Err(err).Msg("skipping unreadable line")
			dl.DroppedBadRows++
			lineNum++
			continue
		}
		lineNum++

		customerID, ok := normalizeCustomerID(field(record, "CustomerID"))
		if !ok {
			dl.DroppedNoCustomer++
			continue
		}

		invoiceDate := parseTimestamp(field(record, "InvoiceDate"))
		if invoiceDate.IsZero() {
			dl.log.Warn().Int("line", lineNum).Str("value", field(record, "InvoiceDate")).Msg("could not parse invoice date")
			dl.DroppedBadRows++
			continue
		}

		quantity, err := parseQuantity(field(record, "Quantity"))
		if err != nil {
			dl.DroppedBadRows++
			continue
		}

		price, err := strconv.ParseFloat(field(record, "Price"), 64)
		if err != nil {
			dl.DroppedBadRows++
			continue
		}

		t := models.Transaction{
			Invoice:     field(record, "Invoice"),
			StockCode:   field(record, "StockCode"),
			Description: field(record, "Description"),
			Quantity:    quantity,
			Price:       price,
			InvoiceDate: invoiceDate,
			CustomerID:  customerID,
			Country:     field(record, "Country"),
		}
		t.ComputeDerivedFields()

		switch {
		case t.Quantity > 0:
			sales = append(sales, t)
		case t.Quantity < 0:
			t.Quantity = -t.Quantity // Returns carry positive magnitudes
			returns = append(returns, t)
		default:
			dl.DroppedZeroQty++
		}
	}

	return models.NewTransactionSet(sales), models.NewTransactionSet(returns), nil
}

// decodeDataset tolerates the non-UTF-8 byte sequences present in the raw
// export: anything that is not valid UTF-8 is decoded as Latin-1
func decodeDataset(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// normalizeCustomerID converts a raw customer identifier to its canonical
// integer-string form. The raw export stores IDs as floats ("17850.0").
// Returns false for absent or non-numeric identifiers.
func normalizeCustomerID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	// Fast path: already an integer string
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), true
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}

	// The raw export stores integer IDs with a float artifact; truncate
	return strconv.FormatInt(int64(f), 10), true
}

// parseQuantity parses an integer quantity, tolerating float artifacts
func parseQuantity(s string) (int, error) {
	if q, err := strconv.Atoi(s); err == nil {
		return q, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseTimestamp tries the timestamp formats seen across export generations
func parseTimestamp(s string) time.Time {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
		"01/02/2006 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
