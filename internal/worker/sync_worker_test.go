package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records"
	"financas/internal/storage"
)

type fakeMirror struct {
	rows    map[int64]core.Transaction
	banks   map[string]core.Bank
	cats    map[string]bool
	putErr  error
	putten  int
	deleted int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		rows:  map[int64]core.Transaction{},
		banks: map[string]core.Bank{},
		cats:  map[string]bool{},
	}
}

func (f *fakeMirror) PutTransaction(_ context.Context, id int64, t core.Transaction) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.rows[id] = t
	f.putten++
	return nil
}

func (f *fakeMirror) DeleteTransaction(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return records.ErrNotFound
	}
	delete(f.rows, id)
	f.deleted++
	return nil
}

func (f *fakeMirror) UpsertBank(_ context.Context, b core.Bank) error {
	f.banks[b.Name] = b
	return nil
}

func (f *fakeMirror) UpsertCategory(_ context.Context, name string) error {
	f.cats[name] = true
	return nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *storage.SQLiteRepository, cents int64, iso string) int64 {
	t.Helper()
	d, err := core.ParseDate(iso)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	id, err := repo.CreateTransaction(context.Background(), core.Transaction{
		Amount: core.Money{Cents: cents}, Date: d, Category: "Mercado", Bank: "Nubank",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return id
}

func TestHandleSyncMessageCreate(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	w := NewSyncWorker(repo, mirror, mirror, 10)
	ctx := context.Background()

	id := seedTransaction(t, repo, -4590, "2024-03-12")
	msg := &amqp.TransactionSyncMessage{ID: id, Op: amqp.OpCreate, Version: 1}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	row, ok := mirror.rows[id]
	if !ok {
		t.Fatalf("transaction not mirrored")
	}
	if row.Amount.Cents != -4590 {
		t.Fatalf("mirrored amount = %d", row.Amount.Cents)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after sync, got %d", len(pending))
	}
}

func TestHandleSyncMessageDeletedLocally(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	w := NewSyncWorker(repo, mirror, mirror, 10)

	// No such row locally: the update message is a no-op, not an error.
	msg := &amqp.TransactionSyncMessage{ID: 99, Op: amqp.OpUpdate, Version: 2}
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle should tolerate local deletion: %v", err)
	}
	if mirror.putten != 0 {
		t.Fatalf("nothing should be mirrored")
	}
}

func TestHandleSyncMessageDelete(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	w := NewSyncWorker(repo, mirror, mirror, 10)
	ctx := context.Background()

	mirror.rows[7] = core.Transaction{}
	msg := &amqp.TransactionSyncMessage{ID: 7, Op: amqp.OpDelete}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if _, ok := mirror.rows[7]; ok {
		t.Fatalf("row not deleted from mirror")
	}

	// Replay converges: deleting an absent row is fine.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("replayed delete should succeed: %v", err)
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	mirror.putErr = errors.New("sheet unavailable")
	w := NewSyncWorker(repo, mirror, mirror, 10)
	ctx := context.Background()

	id := seedTransaction(t, repo, 100, "2024-01-01")
	msg := &amqp.TransactionSyncMessage{ID: id, Op: amqp.OpCreate, Version: 1}
	if err := w.HandleSyncMessage(ctx, msg); err == nil {
		t.Fatalf("expected error when mirror fails")
	}

	// The row left the pending queue via the error status, so the periodic
	// scan does not spin on it.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored row should not stay pending, got %+v", pending)
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	w := NewSyncWorker(repo, mirror, mirror, 10)
	ctx := context.Background()

	seedTransaction(t, repo, 100, "2024-01-01")
	seedTransaction(t, repo, 200, "2024-01-02")
	seedTransaction(t, repo, 300, "2024-01-03")

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if mirror.putten != 3 {
		t.Fatalf("expected 3 mirrored rows, got %d", mirror.putten)
	}

	// A second pass finds nothing to do.
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if mirror.putten != 3 {
		t.Fatalf("second pass should mirror nothing, got %d", mirror.putten)
	}
}

func TestSyncReferenceData(t *testing.T) {
	repo := newTestRepo(t)
	mirror := newFakeMirror()
	w := NewSyncWorker(repo, mirror, mirror, 10)
	ctx := context.Background()

	if err := repo.UpsertBank(ctx, core.Bank{Name: "Nubank", OpeningBalance: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	if err := repo.UpsertCategory(ctx, "Mercado"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	if err := w.SyncReferenceData(ctx); err != nil {
		t.Fatalf("sync reference data: %v", err)
	}
	if b, ok := mirror.banks["Nubank"]; !ok || b.OpeningBalance.Cents != 10000 {
		t.Fatalf("bank not mirrored: %+v", mirror.banks)
	}
	if !mirror.cats["Mercado"] {
		t.Fatalf("category not mirrored: %+v", mirror.cats)
	}
}
