package report

import (
	"context"

	"costbook/internal/core"
)

// Ports for the engine's collaborators. The engine only reads; it
// never mutates store contents.
type (
	// CostReader returns every stored record in insertion order.
	CostReader interface {
		GetAll(ctx context.Context) ([]core.CostRecord, error)
	}

	// RateFetcher obtains a best-effort rate table. The boolean
	// reports whether a usable table was fetched; an empty table with
	// false means the degrade-gracefully fallback kicked in.
	RateFetcher interface {
		Fetch(ctx context.Context, url string) (core.RateMap, bool)
	}

	// SettingsReader returns the persisted rate endpoint URL, empty
	// when none was saved.
	SettingsReader interface {
		RatesURL(ctx context.Context) (string, error)
	}
)
