package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"costbook/internal/core"
)

type fakeCosts struct {
	records []core.CostRecord
	err     error
}

func (f fakeCosts) GetAll(ctx context.Context) ([]core.CostRecord, error) {
	return f.records, f.err
}

type fakeFetcher struct {
	table core.RateMap
	ok    bool
	url   string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (core.RateMap, bool) {
	f.url = url
	if f.table == nil {
		return core.RateMap{}, false
	}
	return f.table, f.ok
}

type fakeSettings struct {
	url string
	err error
}

func (f fakeSettings) RatesURL(ctx context.Context) (string, error) {
	return f.url, f.err
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 15, 4, 5, 0, time.UTC)
}

func sampleRecords() []core.CostRecord {
	return []core.CostRecord{
		{ID: 1, Sum: 100, Currency: "USD", Category: "Food & Dining", Description: "groceries", Date: date(2024, time.March, 5)},
		{ID: 2, Sum: 50, Currency: "EURO", Category: "Transportation", Description: "train", Date: date(2024, time.March, 20)},
		{ID: 3, Sum: 30, Currency: "USD", Category: "Other", Description: "misc", Date: date(2024, time.April, 1)},
	}
}

func newTestEngine(costs CostReader, fetcher RateFetcher) *Engine {
	return NewEngine(costs, fetcher, fakeSettings{})
}

func TestGenerateFiltersAndConverts(t *testing.T) {
	engine := newTestEngine(
		fakeCosts{records: sampleRecords()},
		&fakeFetcher{table: core.RateMap{"USD": 1, "EURO": 0.9}, ok: true},
	)

	rep, err := engine.Generate(context.Background(), 2024, 3, "USD")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if rep.Year != 2024 || rep.Month != 3 {
		t.Fatalf("report period = %d-%d, want 2024-3", rep.Year, rep.Month)
	}
	if len(rep.Costs) != 2 {
		t.Fatalf("expected 2 March records, got %d", len(rep.Costs))
	}
	// 100 + 50/0.9 = 155.5555... rounds to 155.56
	if rep.Total.Total != 155.56 {
		t.Fatalf("total = %v, want 155.56", rep.Total.Total)
	}
	if rep.Total.Currency != "USD" {
		t.Fatalf("total currency = %q, want USD", rep.Total.Currency)
	}
}

func TestGenerateKeepsOriginalSumsPerItem(t *testing.T) {
	engine := newTestEngine(
		fakeCosts{records: sampleRecords()},
		&fakeFetcher{table: core.RateMap{"USD": 1, "EURO": 0.9}, ok: true},
	)

	rep, err := engine.Generate(context.Background(), 2024, 3, "USD")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Line items are never converted: only the aggregate total is.
	if rep.Costs[0].Sum != 100 || rep.Costs[0].Currency != "USD" {
		t.Fatalf("item 0 altered: %+v", rep.Costs[0])
	}
	if rep.Costs[1].Sum != 50 || rep.Costs[1].Currency != "EURO" {
		t.Fatalf("item 1 altered: %+v", rep.Costs[1])
	}
	if rep.Costs[0].Date.Day != 5 || rep.Costs[1].Date.Day != 20 {
		t.Fatalf("item days wrong: %+v", rep.Costs)
	}
}

func TestGenerateEmptyRatesDegradesToPlainSum(t *testing.T) {
	engine := newTestEngine(
		fakeCosts{records: sampleRecords()},
		&fakeFetcher{}, // degraded fetch: empty table
	)

	rep, err := engine.Generate(context.Background(), 2024, 3, "USD")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// 100 USD + 50 EURO summed as-is despite mixed currencies.
	if rep.Total.Total != 150.00 {
		t.Fatalf("degraded total = %v, want 150.00", rep.Total.Total)
	}
}

func TestGenerateMissingCurrencyFallsBackPerRecord(t *testing.T) {
	records := []core.CostRecord{
		{ID: 1, Sum: 100, Currency: "USD", Date: date(2024, time.March, 1)},
		{ID: 2, Sum: 40, Currency: "GBP", Date: date(2024, time.March, 2)}, // not in table
	}
	engine := newTestEngine(
		fakeCosts{records: records},
		&fakeFetcher{table: core.RateMap{"USD": 2}, ok: true},
	)

	rep, err := engine.Generate(context.Background(), 2024, 3, "USD")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// USD record converts normally (100/2*2 = 100); the GBP record's
	// source rate falls back to 1 independently (40/1*2 = 80).
	if rep.Total.Total != 180.00 {
		t.Fatalf("total = %v, want 180.00", rep.Total.Total)
	}
}

func TestGenerateNoMatchesYieldsEmptyReport(t *testing.T) {
	engine := newTestEngine(
		fakeCosts{records: sampleRecords()},
		&fakeFetcher{table: core.RateMap{"USD": 1}, ok: true},
	)

	rep, err := engine.Generate(context.Background(), 2031, 7, "USD")
	if err != nil {
		t.Fatalf("empty month is a valid report, got error: %v", err)
	}
	if rep.Costs == nil {
		t.Fatalf("costs must be an empty slice, not nil")
	}
	if len(rep.Costs) != 0 || rep.Total.Total != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}

func TestGenerateInvalidPeriod(t *testing.T) {
	engine := newTestEngine(fakeCosts{}, &fakeFetcher{})

	if _, err := engine.Generate(context.Background(), 2024, 0, "USD"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("month 0: got %v, want ErrInvalidMonth", err)
	}
	if _, err := engine.Generate(context.Background(), 2024, 13, "USD"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("month 13: got %v, want ErrInvalidMonth", err)
	}
	if _, err := engine.Generate(context.Background(), 0, 5, "USD"); !errors.Is(err, core.ErrInvalidYear) {
		t.Fatalf("year 0: got %v, want ErrInvalidYear", err)
	}
}

func TestGenerateStoreReadFailurePropagates(t *testing.T) {
	readErr := errors.New("disk exploded")
	engine := newTestEngine(
		fakeCosts{err: readErr},
		&fakeFetcher{table: core.RateMap{"USD": 1}, ok: true},
	)

	_, err := engine.Generate(context.Background(), 2024, 3, "USD")
	if !errors.Is(err, readErr) {
		t.Fatalf("store failure must propagate, got %v", err)
	}
}

func TestGenerateUsesSavedRatesURL(t *testing.T) {
	fetcher := &fakeFetcher{table: core.RateMap{"USD": 1}, ok: true}
	engine := NewEngine(fakeCosts{}, fetcher, fakeSettings{url: "https://example.com/custom.json"})

	if _, err := engine.Generate(context.Background(), 2024, 3, "USD"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fetcher.url != "https://example.com/custom.json" {
		t.Fatalf("fetched %q, want the saved settings URL", fetcher.url)
	}
}

func TestGenerateFallsBackToDefaultRatesURL(t *testing.T) {
	fetcher := &fakeFetcher{table: core.RateMap{"USD": 1}, ok: true}
	engine := NewEngine(fakeCosts{}, fetcher, fakeSettings{url: ""})

	if _, err := engine.Generate(context.Background(), 2024, 3, "USD"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fetcher.url == "" {
		t.Fatalf("expected a default URL to be used")
	}

	// A settings read failure costs us the custom URL, not the report.
	fetcher2 := &fakeFetcher{table: core.RateMap{"USD": 1}, ok: true}
	engine2 := NewEngine(fakeCosts{}, fetcher2, fakeSettings{err: errors.New("settings table gone")})
	if _, err := engine2.Generate(context.Background(), 2024, 3, "USD"); err != nil {
		t.Fatalf("generate with failing settings: %v", err)
	}
	if fetcher2.url == "" {
		t.Fatalf("expected fallback URL despite settings failure")
	}
}

func TestGenerateTotalRoundedToTwoDecimals(t *testing.T) {
	records := []core.CostRecord{
		{ID: 1, Sum: 10, Currency: "EURO", Date: date(2024, time.May, 3)},
	}
	engine := newTestEngine(
		fakeCosts{records: records},
		&fakeFetcher{table: core.RateMap{"USD": 1, "EURO": 3}, ok: true},
	)

	rep, err := engine.Generate(context.Background(), 2024, 5, "USD")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 10/3 = 3.3333... must come back as exactly 3.33.
	if rep.Total.Total != 3.33 {
		t.Fatalf("total = %v, want 3.33", rep.Total.Total)
	}
}
