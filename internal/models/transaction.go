package models

import (
	"sort"
	"time"
)

// Transaction represents a single cleaned retail line item. Quantity is
// positive in both partitions after cleaning; TotalAmount keeps the sign it
// had at derivation time (negative for returns).
type Transaction struct {
	Invoice     string    `json:"invoice"`
	StockCode   string    `json:"stock_code"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	InvoiceDate time.Time `json:"invoice_date"`
	CustomerID  string    `json:"customer_id"`
	Country     string    `json:"country"`

	// Derived fields (computed, not parsed)
	TotalAmount float64 `json:"total_amount"`
	MonthYear   string  `json:"month_year"` // "2024-01"
	Hour        int     `json:"hour"`       // 0-23
	DayOfWeek   string  `json:"day_of_week"`
}

// ComputeDerivedFields populates computed fields from Quantity, Price and
// InvoiceDate. Must run before any quantity sign flipping so TotalAmount
// stays signed.
func (t *Transaction) ComputeDerivedFields() {
	t.TotalAmount = float64(t.Quantity) * t.Price
	t.MonthYear = t.InvoiceDate.Format("2006-01")
	t.Hour = t.InvoiceDate.Hour()
	t.DayOfWeek = t.InvoiceDate.Weekday().String()
}

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByCountries returns transactions whose country is in the given
// selection. An empty selection means "no filter" and returns the set
// unchanged.
func (ts *TransactionSet) FilterByCountries(countries []string) *TransactionSet {
	if len(countries) == 0 {
		return ts
	}

	selected := make(map[string]bool, len(countries))
	for _, c := range countries {
		selected[c] = true
	}

	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if selected[t.Country] {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Countries returns a sorted list of unique countries
func (ts *TransactionSet) Countries() []string {
	countryMap := make(map[string]bool)
	for _, t := range ts.Transactions {
		countryMap[t.Country] = true
	}

	countries := make([]string, 0, len(countryMap))
	for c := range countryMap {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// SumTotalAmount returns the sum of all transaction totals
func (ts *TransactionSet) SumTotalAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += t.TotalAmount
	}
	return sum
}

// DistinctInvoices returns the number of unique invoice identifiers
func (ts *TransactionSet) DistinctInvoices() int {
	seen := make(map[string]bool)
	for _, t := range ts.Transactions {
		seen[t.Invoice] = true
	}
	return len(seen)
}

// DistinctCustomers returns the number of unique customer identifiers
func (ts *TransactionSet) DistinctCustomers() int {
	seen := make(map[string]bool)
	for _, t := range ts.Transactions {
		seen[t.CustomerID] = true
	}
	return len(seen)
}

// MinInvoiceDate returns the earliest invoice date
func (ts *TransactionSet) MinInvoiceDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	minDate := ts.Transactions[0].InvoiceDate
	for _, t := range ts.Transactions[1:] {
		if t.InvoiceDate.Before(minDate) {
			minDate = t.InvoiceDate
		}
	}
	return minDate
}

// MaxInvoiceDate returns the latest invoice date
func (ts *TransactionSet) MaxInvoiceDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	maxDate := ts.Transactions[0].InvoiceDate
	for _, t := range ts.Transactions[1:] {
		if t.InvoiceDate.After(maxDate) {
			maxDate = t.InvoiceDate
		}
	}
	return maxDate
}

// SortByDate sorts transactions by invoice date (ascending)
func (ts *TransactionSet) SortByDate() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].InvoiceDate.Before(sorted[j].InvoiceDate)
	})
	return &TransactionSet{Transactions: sorted}
}

// Copy creates a shallow copy of the TransactionSet
func (ts *TransactionSet) Copy() *TransactionSet {
	copied := make([]Transaction, len(ts.Transactions))
	copy(copied, ts.Transactions)
	return &TransactionSet{Transactions: copied}
}
