// Package rates fetches the currency rate table used for report
// conversions.
//
// The provider degrades gracefully by contract: any network, status or
// decode failure yields an empty table instead of an error, which
// downstream conversion treats as "convert nothing". Failures stay
// observable through the returned flag, a warn log and a metric.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"costbook/internal/core"
	"costbook/internal/observability/metrics"
)

// DefaultURL is the rate endpoint used when no URL was ever saved in
// settings.
const DefaultURL = "https://currency-rates-api-gdwf.onrender.com/rates.json"

// maxBodySize caps the response body read from the rate endpoint.
const maxBodySize = 1 << 20 // 1MB

// Provider fetches rate tables over HTTP. It does not cache, retry or
// persist results: every call is a fresh fetch, so reports always see
// current rates.
type Provider struct {
	client *http.Client
}

// NewProvider returns a provider whose requests abort after timeout.
// The original tool had no timeout at all and a hung endpoint would
// stall report generation indefinitely.
func NewProvider(timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the rate table from url. It never fails: on any
// error it returns an empty table and false. The endpoint may return
// either a bare currency-to-rate object or one nested under a "rates"
// field.
func (p *Provider) Fetch(ctx context.Context, url string) (core.RateMap, bool) {
	table, err := p.fetch(ctx, url)
	if err != nil {
		slog.WarnContext(ctx, "Rate fetch failed, reports will use unconverted sums",
			"url", url, "error", err)
		metrics.IncRateFetch(metrics.ResultError)
		return core.RateMap{}, false
	}

	metrics.IncRateFetch(metrics.ResultSuccess)
	slog.DebugContext(ctx, "Rates fetched", "url", url, "currencies", len(table))
	return table, true
}

func (p *Provider) fetch(ctx context.Context, url string) (core.RateMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rate endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return parseRates(body)
}

// parseRates accepts {"rates": {"USD": 1, ...}} or the bare mapping.
func parseRates(body []byte) (core.RateMap, error) {
	var envelope struct {
		Rates core.RateMap `json:"rates"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Rates) > 0 {
		return envelope.Rates, nil
	}

	var table core.RateMap
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("rate table is empty")
	}
	return table, nil
}
