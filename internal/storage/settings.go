package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// ratesURLKey is the fixed settings key holding the user-chosen rate
// endpoint URL.
const ratesURLKey = "exchange_rates_url"

// RatesURL returns the persisted rate endpoint URL, or the empty
// string when none was ever saved. Callers apply their own default.
func (s *CostStore) RatesURL(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, ratesURLKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read rates url setting: %w", err)
	}
	return value, nil
}

// SaveRatesURL persists the rate endpoint URL, replacing any previous
// value.
func (s *CostStore) SaveRatesURL(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		ratesURLKey, url)
	if err != nil {
		return fmt.Errorf("save rates url setting: %w", err)
	}
	slog.InfoContext(ctx, "Rates URL setting saved", "url", url)
	return nil
}
