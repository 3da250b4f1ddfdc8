// Package storage implements the embedded cost store on SQLite.
//
// Every write runs in its own transaction: a record is either fully
// persisted or not at all. Reads see a consistent snapshot. Dates are
// normalized to UTC before persisting so month filtering is not
// affected by the timezone the process happens to run in.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"costbook/internal/core"

	_ "modernc.org/sqlite"
)

// ErrStorageUnavailable reports that the embedded database could not
// be opened or migrated. Fatal to every store operation.
var ErrStorageUnavailable = errors.New("cost database unavailable")

// CostStore is the durable, transactional collection of cost records.
// It is a long-lived shared resource: open it once and reuse it.
type CostStore struct {
	db *sql.DB
}

// Open opens or creates the costs database at dbPath, creating the
// schema when it does not exist yet. Calling Open on an existing
// database simply connects.
func Open(dbPath string) (*CostStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorageUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}

	return &CostStore{db: db}, nil
}

func (s *CostStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddCost inserts a new cost record stamped with the current time.
// A caller-supplied date is ignored; use AddCostWithDate to keep it.
// The returned record carries the assigned id.
func (s *CostStore) AddCost(ctx context.Context, rec core.CostRecord) (core.CostRecord, error) {
	rec.Date = time.Now().UTC()
	return s.insert(ctx, rec)
}

// AddCostWithDate inserts a new cost record preserving rec.Date when
// set, falling back to the current time when it is zero. Exists so
// seeding and tests can insert records with historical dates.
func (s *CostStore) AddCostWithDate(ctx context.Context, rec core.CostRecord) (core.CostRecord, error) {
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC()
	} else {
		rec.Date = rec.Date.UTC()
	}
	return s.insert(ctx, rec)
}

func (s *CostStore) insert(ctx context.Context, rec core.CostRecord) (core.CostRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO costs (sum, currency, category, description, date) VALUES (?, ?, ?, ?, ?)`,
		rec.Sum, rec.Currency, rec.Category, rec.Description, rec.Date.Format(time.RFC3339Nano))
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("insert cost: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("read inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.CostRecord{}, fmt.Errorf("commit insert: %w", err)
	}

	rec.ID = id
	slog.InfoContext(ctx, "Cost saved",
		"id", rec.ID,
		"sum", rec.Sum,
		"currency", rec.Currency,
		"category", rec.Category)
	return rec, nil
}

// GetAll returns every stored record in insertion order. The order is
// stable across reads absent writes: rows come back sorted by id.
func (s *CostStore) GetAll(ctx context.Context) ([]core.CostRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sum, currency, category, description, date FROM costs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read costs: %w", err)
	}
	defer rows.Close()

	var records []core.CostRecord
	for rows.Next() {
		var (
			rec     core.CostRecord
			rawDate string
		)
		if err := rows.Scan(&rec.ID, &rec.Sum, &rec.Currency, &rec.Category, &rec.Description, &rawDate); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		date, err := time.Parse(time.RFC3339Nano, rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse cost date %q (id=%d): %w", rawDate, rec.ID, err)
		}
		rec.Date = date
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost rows: %w", err)
	}

	return records, nil
}
