package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
	"financas/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTransaction(t *testing.T, cents int64, iso, category, bank string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(iso)
	if err != nil {
		t.Fatalf("parse date %q: %v", iso, err)
	}
	return core.Transaction{Amount: core.Money{Cents: cents}, Date: d, Category: category, Bank: bank}
}

func TestReopenKeepsDataAndConnection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	id, err := repo.CreateTransaction(ctx, testTransaction(t, -100, "2024-01-15", "Mercado", "Nubank"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second open finds the schema in place and must still leave a
	// usable connection behind.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Amount.Cents != -100 {
		t.Errorf("amount after reopen = %d, want -100", got.Amount.Cents)
	}
	if _, err := repo.CreateTransaction(ctx, testTransaction(t, 200, "2024-01-16", "Salario", "Nubank")); err != nil {
		t.Fatalf("create after reopen: %v", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, testTransaction(t, -4590, "2024-03-12", "Mercado", "Nubank"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id < 1 {
		t.Fatalf("create returned id %d", id)
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != -4590 || got.Date.ISO() != "2024-03-12" || got.Bank != "Nubank" {
		t.Fatalf("unexpected transaction: %+v", got)
	}

	updated := testTransaction(t, 1500, "2024-03-13", "Salário", "Itaú")
	if err := repo.UpdateTransaction(ctx, id, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Amount.Cents != 1500 || got.Category != "Salário" {
		t.Fatalf("update not applied: %+v", got)
	}

	all, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("list returned %d transactions", len(all))
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, id); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
	if _, err := repo.GetTransaction(ctx, id); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("get after delete should be ErrNotFound, got %v", err)
	}
}

func TestUpdateUnknownTransaction(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateTransaction(context.Background(), 42, testTransaction(t, 100, "2024-01-01", "x", "y"))
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.CreateTransaction(ctx, testTransaction(t, 100, "2024-01-01", "a", "b"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, err := repo.CreateTransaction(ctx, testTransaction(t, 200, "2024-01-02", "a", "b"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].Version != 1 {
		t.Fatalf("fresh transaction should be version 1, got %d", pending[0].Version)
	}

	if err := repo.MarkSynced(ctx, id1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after sync: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id2 {
		t.Fatalf("expected only %d pending, got %+v", id2, pending)
	}

	// Updating a synced row puts it back in the pending queue with a
	// bumped version.
	if err := repo.UpdateTransaction(ctx, id1, testTransaction(t, 150, "2024-01-01", "a", "b")); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after update: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending after update, got %d", len(pending))
	}
	for _, p := range pending {
		if p.ID == id1 && p.Version != 2 {
			t.Fatalf("updated transaction should be version 2, got %d", p.Version)
		}
	}

	if err := repo.MarkSyncError(ctx, id2); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id1 {
		t.Fatalf("errored transaction should leave pending queue, got %+v", pending)
	}
}

func TestBankStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertBank(ctx, core.Bank{Name: "Nubank", OpeningBalance: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	b, ok, err := repo.GetBank(ctx, "Nubank")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if b.OpeningBalance.Cents != 10000 {
		t.Fatalf("opening = %d", b.OpeningBalance.Cents)
	}

	// Same name overwrites the opening balance
	if err := repo.UpsertBank(ctx, core.Bank{Name: "Nubank", OpeningBalance: core.Money{Cents: -500}}); err != nil {
		t.Fatalf("upsert overwrite: %v", err)
	}
	b, _, _ = repo.GetBank(ctx, "Nubank")
	if b.OpeningBalance.Cents != -500 {
		t.Fatalf("overwrite not applied: %d", b.OpeningBalance.Cents)
	}

	if _, ok, err := repo.GetBank(ctx, "Ghost"); err != nil || ok {
		t.Fatalf("absent bank: ok=%v err=%v", ok, err)
	}

	if err := repo.DeleteBank(ctx, "Nubank"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteBank(ctx, "Nubank"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestCategoryStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Mercado", "Mercado", "Lazer"} {
		if err := repo.UpsertCategory(ctx, name); err != nil {
			t.Fatalf("upsert %q: %v", name, err)
		}
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %v", cats)
	}
}
