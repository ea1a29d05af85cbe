package services

import (
	"context"
	"errors"
	"testing"

	"financas/internal/core"
)

type fakeTxLister struct {
	txs []core.Transaction
	err error
}

func (f fakeTxLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	return f.txs, f.err
}

type fakeBankStore struct {
	banks []core.Bank
	err   error
}

func (f fakeBankStore) ListBanks(context.Context) ([]core.Bank, error) { return f.banks, f.err }
func (f fakeBankStore) GetBank(context.Context, string) (core.Bank, bool, error) {
	return core.Bank{}, false, nil
}
func (f fakeBankStore) UpsertBank(context.Context, core.Bank) error { return nil }
func (f fakeBankStore) DeleteBank(context.Context, string) error    { return nil }

type fakeCatStore struct {
	cats []string
	err  error
}

func (f fakeCatStore) ListCategories(context.Context) ([]string, error) { return f.cats, f.err }
func (f fakeCatStore) UpsertCategory(context.Context, string) error     { return nil }

func TestSnapshotLoaderLoadsAllCollections(t *testing.T) {
	d, _ := core.ParseDate("2024-01-05")
	loader := NewSnapshotLoader(
		fakeTxLister{txs: []core.Transaction{{ID: 1, Date: d, Category: "c", Bank: "b"}}},
		fakeBankStore{banks: []core.Bank{{Name: "Alpha"}}},
		fakeCatStore{cats: []string{"Casa"}},
	)

	snap, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Transactions) != 1 || len(snap.Banks) != 1 || len(snap.Categories) != 1 {
		t.Fatalf("incomplete snapshot: %+v", snap)
	}
}

func TestSnapshotLoaderFailureYieldsNoPartial(t *testing.T) {
	boom := errors.New("store unreachable")
	loader := NewSnapshotLoader(
		fakeTxLister{txs: []core.Transaction{{ID: 1}}},
		fakeBankStore{err: boom},
		fakeCatStore{cats: []string{"Casa"}},
	)

	snap, err := loader.Load(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if snap.Transactions != nil || snap.Banks != nil || snap.Categories != nil {
		t.Fatalf("failed load must not hand out a partial snapshot: %+v", snap)
	}
}
