package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
	"financas/internal/records"
)

// Snapshot is one complete, caller-owned view of the record store. The
// aggregation engine treats it as authoritative; there is no ambient
// "last loaded" state anywhere, callers pass snapshots around explicitly.
type Snapshot struct {
	Transactions []core.Transaction
	Banks        []core.Bank
	Categories   []string
}

// SnapshotLoader fetches the three collections concurrently.
type SnapshotLoader struct {
	txs   records.TransactionLister
	banks records.BankStore
	cats  records.CategoryStore
}

func NewSnapshotLoader(txs records.TransactionLister, banks records.BankStore, cats records.CategoryStore) *SnapshotLoader {
	return &SnapshotLoader{txs: txs, banks: banks, cats: cats}
}

// Load returns a full snapshot or an error, never a partial snapshot: a
// failed fetch aborts the whole refresh and the caller keeps whatever
// snapshot it was already showing.
func (l *SnapshotLoader) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := l.txs.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		banks, err := l.banks.ListBanks(gctx)
		if err != nil {
			return fmt.Errorf("load banks: %w", err)
		}
		snap.Banks = banks
		return nil
	})
	g.Go(func() error {
		cats, err := l.cats.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
