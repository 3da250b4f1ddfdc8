// Package report computes monthly expense reports with currency
// conversion.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"costbook/internal/core"
	"costbook/internal/observability/metrics"
	"costbook/internal/rates"
)

// Engine combines the cost store, the rate provider and the settings
// store into report generation. All collaborators are injected; the
// engine holds no global state.
type Engine struct {
	costs    CostReader
	fetcher  RateFetcher
	settings SettingsReader
}

func NewEngine(costs CostReader, fetcher RateFetcher, settings SettingsReader) *Engine {
	return &Engine{
		costs:    costs,
		fetcher:  fetcher,
		settings: settings,
	}
}

// Generate builds the report for the given year, 1-indexed month and
// target currency.
//
// Per-record entries keep their original sum and currency; only the
// aggregate total is converted, using current rates for all historical
// records. Filtering compares the stored date's UTC calendar fields.
// A month with no records is a valid empty report, not an error; a
// store read failure is an error.
func (e *Engine) Generate(ctx context.Context, year, month int, currency string) (core.Report, error) {
	start := time.Now()

	rep, err := e.generate(ctx, year, month, currency)
	if err != nil {
		metrics.ObserveReport(metrics.ResultError, time.Since(start))
		return core.Report{}, err
	}

	metrics.ObserveReport(metrics.ResultSuccess, time.Since(start))
	return rep, nil
}

func (e *Engine) generate(ctx context.Context, year, month int, currency string) (core.Report, error) {
	if err := core.ValidatePeriod(year, month); err != nil {
		return core.Report{}, err
	}

	url := e.ratesURL(ctx)

	// Neither result depends on the other, so fetch them concurrently.
	var (
		table   core.RateMap
		fetched bool
		records []core.CostRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		table, fetched = e.fetcher.Fetch(gctx, url)
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = e.costs.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("read costs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}

	rep := core.Report{
		Year:  year,
		Month: month,
		Costs: []core.ReportItem{},
		Total: core.ReportTotal{Currency: currency},
	}

	var total float64
	for _, rec := range records {
		d := rec.Date.UTC()
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		rep.Costs = append(rep.Costs, core.ReportItem{
			Sum:         rec.Sum,
			Currency:    rec.Currency,
			Category:    rec.Category,
			Description: rec.Description,
			Date:        core.ItemDate{Day: d.Day()},
		})
		total += core.Convert(rec.Sum, rec.Currency, currency, table)
	}
	rep.Total.Total = core.Round2(total)

	slog.InfoContext(ctx, "Report generated",
		"year", year,
		"month", month,
		"currency", currency,
		"matched", len(rep.Costs),
		"rates_available", fetched,
		"total", rep.Total.Total)
	return rep, nil
}

// ratesURL resolves the endpoint from settings, falling back to the
// documented default. A settings read failure only costs us the custom
// URL, never the report.
func (e *Engine) ratesURL(ctx context.Context) string {
	if e.settings == nil {
		return rates.DefaultURL
	}
	url, err := e.settings.RatesURL(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Settings read failed, using default rates URL", "error", err)
		return rates.DefaultURL
	}
	if url == "" {
		return rates.DefaultURL
	}
	return url
}
