package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records"
	"financas/internal/storage"
)

// TransactionMirror is the remote side of the sync pipeline. Writes are
// id-addressed so replayed messages converge instead of duplicating rows.
type TransactionMirror interface {
	PutTransaction(ctx context.Context, id int64, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
}

// ReferenceMirror receives the reference data (banks, categories) the
// transaction rows refer to.
type ReferenceMirror interface {
	UpsertBank(ctx context.Context, b core.Bank) error
	UpsertCategory(ctx context.Context, name string) error
}

// SyncWorker mirrors transactions from SQLite to a Google Spreadsheet.
// AMQP messages drive the happy path; a periodic scan of rows still
// marked pending covers lost messages and worker downtime.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    TransactionMirror
	refs      ReferenceMirror
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirror TransactionMirror, refs ReferenceMirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		refs:      refs,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"op", msg.Op,
		"version", msg.Version)

	if msg.Op == amqp.OpDelete {
		return w.deleteFromMirror(ctx, msg.ID)
	}

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, records.ErrNotFound) {
		// Deleted locally before we got here; the delete message will
		// clean up the mirror.
		slog.InfoContext(ctx, "Transaction gone from local store, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncToMirror(ctx, msg.ID, t)
}

func (w *SyncWorker) deleteFromMirror(ctx context.Context, id int64) error {
	err := w.mirror.DeleteTransaction(ctx, id)
	if errors.Is(err, records.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction already absent from mirror", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete transaction from mirror: %w", err)
	}
	slog.InfoContext(ctx, "Deleted transaction from mirror", "id", id)
	return nil
}

func (w *SyncWorker) syncToMirror(ctx context.Context, id int64, t core.Transaction) error {
	if err := w.mirror.PutTransaction(ctx, id, t); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("put transaction in mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The mirror write itself worked, so don't fail the message.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully mirrored transaction",
		"id", id,
		"bank", t.Bank,
		"amount_cents", t.Amount.Cents)
	return nil
}

// ProcessPendingTransactions mirrors any rows still marked pending.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncToMirror(ctx, p.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck mirrors pending rows accumulated while the worker was
// down, using a larger batch than the periodic scan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncToMirror(ctx, p.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// SyncReferenceData pushes the local banks and categories to the mirror
// so its transaction rows always have their reference rows alongside.
func (w *SyncWorker) SyncReferenceData(ctx context.Context) error {
	if w.refs == nil {
		return nil
	}

	banks, err := w.storage.ListBanks(ctx)
	if err != nil {
		return fmt.Errorf("list banks: %w", err)
	}
	for _, b := range banks {
		if err := w.refs.UpsertBank(ctx, b); err != nil {
			return fmt.Errorf("mirror bank %q: %w", b.Name, err)
		}
	}

	categories, err := w.storage.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if err := w.refs.UpsertCategory(ctx, c); err != nil {
			return fmt.Errorf("mirror category %q: %w", c, err)
		}
	}

	slog.InfoContext(ctx, "Reference data mirrored",
		"banks", len(banks),
		"categories", len(categories))
	return nil
}
