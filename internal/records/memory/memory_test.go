package memory

import (
	"context"
	"errors"
	"testing"

	"financas/internal/core"
	"financas/internal/records"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	d, _ := core.ParseDate("2024-01-05")
	id, err := s.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 5000}, Date: d, Category: "Salário", Bank: "Alpha",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected store-assigned id")
	}

	updated := core.Transaction{Amount: core.Money{Cents: -700}, Date: d, Category: "Mercado", Bank: "Alpha"}
	if err := s.UpdateTransaction(ctx, id, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("list: %v, %d items", err, len(txs))
	}
	if txs[0].ID != id || txs[0].Amount.Cents != -700 {
		t.Fatalf("update not applied: %+v", txs[0])
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, id); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("second delete expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateTransaction(ctx, 999, updated); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("update missing expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New(nil, nil)
	_, err := s.CreateTransaction(context.Background(), core.Transaction{Bank: "Alpha"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCategoryUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Casa"}, nil)

	for i := 0; i < 3; i++ {
		if err := s.UpsertCategory(ctx, "Mercado"); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %v", cats)
	}
	if err := s.UpsertCategory(ctx, "  "); err == nil {
		t.Fatalf("blank name expected error")
	}
}

func TestBankUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	if err := s.UpsertBank(ctx, core.Bank{Name: "Alpha", OpeningBalance: core.Money{Cents: 100}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertBank(ctx, core.Bank{Name: "Alpha", OpeningBalance: core.Money{Cents: 999}}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	banks, _ := s.ListBanks(ctx)
	if len(banks) != 1 {
		t.Fatalf("upsert must not duplicate: %v", banks)
	}
	if banks[0].OpeningBalance.Cents != 999 {
		t.Fatalf("upsert must overwrite: %+v", banks[0])
	}

	b, ok, err := s.GetBank(ctx, "Alpha")
	if err != nil || !ok || b.OpeningBalance.Cents != 999 {
		t.Fatalf("get: %v %v %+v", err, ok, b)
	}
	_, ok, err = s.GetBank(ctx, "Missing")
	if err != nil || ok {
		t.Fatalf("absent bank must report ok=false without error")
	}
}

func TestDeleteBankLeavesTransactions(t *testing.T) {
	ctx := context.Background()
	s := New(nil, []core.Bank{{Name: "Alpha", OpeningBalance: core.Money{Cents: 100}}})

	d, _ := core.ParseDate("2024-01-05")
	if _, err := s.CreateTransaction(ctx, core.Transaction{Amount: core.Money{Cents: 10}, Date: d, Category: "c", Bank: "Alpha"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteBank(ctx, "Alpha"); err != nil {
		t.Fatalf("delete bank: %v", err)
	}
	if err := s.DeleteBank(ctx, "Alpha"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The transaction stays behind as a dangling reference and the next
	// aggregation pass still works.
	txs, _ := s.ListTransactions(ctx)
	banks, _ := s.ListBanks(ctx)
	r := core.RollupBalances(banks, txs)
	if entry, ok := r.Banks["Alpha"]; !ok || entry.Opening.Cents != 0 {
		t.Fatalf("expected synthesized zero-opening entry, got %+v", r.Banks)
	}
}
