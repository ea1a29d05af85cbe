package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records"
)

// SyncPublisher publishes mirror requests for the sheet-sync worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64, op string, version int64) error
}

// TransactionService orchestrates transaction writes: persist locally first,
// then ask the worker to mirror the change. Publish failures never fail the
// user request, the local write is already durable.
type TransactionService struct {
	store     records.TransactionWriter
	publisher SyncPublisher
}

func NewTransactionService(store records.TransactionWriter, publisher SyncPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, id, amqp.OpCreate, 1)
	return id, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, t core.Transaction) error {
	if err := s.store.UpdateTransaction(ctx, id, t); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.OpUpdate, 0)
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.OpDelete, 0)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id int64, op string, version int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Sync publisher not configured, skipping mirror message", "id", id, "op", op)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, op, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "op", op, "error", err)
	}
}
