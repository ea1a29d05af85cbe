// Package records defines the ports for the durable record store: keyed
// storage for the three entity kinds (transactions, banks, categories).
// Adapters live in subpackages and in internal/storage.
package records

import (
	"context"
	"errors"

	"financas/internal/core"
)

// ErrNotFound reports an update or delete that referenced a record the
// store does not hold.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	TransactionLister interface {
		// ListTransactions returns the complete transaction snapshot.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// CreateTransaction persists a new transaction and returns the
		// store-assigned id.
		CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
		UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id int64) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]string, error)
		// UpsertCategory is idempotent: inserting an existing name is a no-op.
		UpsertCategory(ctx context.Context, name string) error
	}

	BankStore interface {
		ListBanks(ctx context.Context) ([]core.Bank, error)
		// GetBank reports absence through the bool, not through an error.
		GetBank(ctx context.Context, name string) (core.Bank, bool, error)
		// UpsertBank overwrites any bank with the same name.
		UpsertBank(ctx context.Context, b core.Bank) error
		// DeleteBank removes the bank record only; transactions referencing
		// its name stay behind as dangling references.
		DeleteBank(ctx context.Context, name string) error
	}
)
