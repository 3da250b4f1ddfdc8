package core

import (
	"errors"
	"strings"
	"time"
)

// Currency codes accepted by the entry API. The store itself is
// permissive and persists whatever code it is handed.
const (
	USD  = "USD"
	ILS  = "ILS"
	GBP  = "GBP"
	EURO = "EURO"
)

// Currencies lists the codes offered by the entry form, in display order.
func Currencies() []string {
	return []string{USD, ILS, GBP, EURO}
}

// Categories lists the spending categories offered by the entry form.
// The list is advisory: records with other categories are stored as-is.
func Categories() []string {
	return []string{
		"Food & Dining",
		"Transportation",
		"Housing",
		"Utilities",
		"Entertainment",
		"Healthcare",
		"Shopping",
		"Other",
	}
}

type (
	// CostRecord is a single persisted expense entry. Records are
	// immutable once stored; the id is assigned by the store on insert.
	CostRecord struct {
		ID          int64     `json:"id"`
		Sum         float64   `json:"sum"`
		Currency    string    `json:"currency"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	// RateMap maps a currency code to its rate against a common base
	// currency. It is ephemeral and re-fetched for every report.
	RateMap map[string]float64

	// ItemDate carries the day-of-month of a report line item.
	ItemDate struct {
		Day int `json:"day"`
	}

	// ReportItem is a per-record projection in a report. Sum and
	// currency are the original stored values, never converted.
	ReportItem struct {
		Sum         float64  `json:"sum"`
		Currency    string   `json:"currency"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Date        ItemDate `json:"Date"`
	}

	// ReportTotal is the aggregate sum converted into the target currency.
	ReportTotal struct {
		Currency string  `json:"currency"`
		Total    float64 `json:"total"`
	}

	// Report is the computed summary for a year, month and target currency.
	Report struct {
		Year  int          `json:"year"`
		Month int          `json:"month"`
		Costs []ReportItem `json:"costs"`
		Total ReportTotal  `json:"total"`
	}
)

var (
	ErrInvalidSum       = errors.New("sum must be positive")
	ErrInvalidCurrency  = errors.New("unsupported currency")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidYear      = errors.New("invalid year")
)

// Validate checks the entry-API invariants. The store layer does not
// call this: persistence is schema-permissive by contract.
func (c CostRecord) Validate() error {
	if c.Sum <= 0 {
		return ErrInvalidSum
	}
	if !validCurrency(c.Currency) {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	if len(c.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func validCurrency(code string) bool {
	for _, c := range Currencies() {
		if code == c {
			return true
		}
	}
	return false
}

// ValidatePeriod checks report filter parameters.
func ValidatePeriod(year, month int) error {
	if year < 1 {
		return ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}
