// Package services orchestrates cost writes across the store and the
// optional event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"costbook/internal/amqp"
	"costbook/internal/core"
	"costbook/internal/observability/metrics"
	"costbook/internal/storage"
)

// CostService saves cost records and announces them. Storage failures
// propagate; publish failures are logged and swallowed because the
// record is already durable.
type CostService struct {
	store      *storage.CostStore
	amqpClient *amqp.Client
}

func NewCostService(store *storage.CostStore, amqpClient *amqp.Client) *CostService {
	return &CostService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// AddCost persists a record stamped with the current time.
func (s *CostService) AddCost(ctx context.Context, rec core.CostRecord) (core.CostRecord, error) {
	stored, err := s.store.AddCost(ctx, rec)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("save cost: %w", err)
	}

	s.announce(ctx, stored)
	return stored, nil
}

// AddCostWithDate persists a record keeping its supplied date, for
// backfilling historical entries.
func (s *CostService) AddCostWithDate(ctx context.Context, rec core.CostRecord) (core.CostRecord, error) {
	stored, err := s.store.AddCostWithDate(ctx, rec)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("save cost with date: %w", err)
	}

	s.announce(ctx, stored)
	return stored, nil
}

func (s *CostService) announce(ctx context.Context, rec core.CostRecord) {
	metrics.IncCostRecorded(rec.Currency)

	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishCostRecorded(ctx, rec.ID, rec.Sum, rec.Currency); err != nil {
		// Don't fail the request - the cost is saved locally
		slog.ErrorContext(ctx, "Failed to publish cost recorded event",
			"id", rec.ID, "error", err)
	}
}

// Close closes both the store and the AMQP connection.
func (s *CostService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close cost service: %v", errs)
	}

	return nil
}
