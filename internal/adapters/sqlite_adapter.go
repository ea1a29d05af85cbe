package adapters

import (
	"context"

	"financas/internal/core"
	"financas/internal/services"
	"financas/internal/storage"
)

// SQLiteAdapter combines SQLiteRepository and TransactionService into
// the records.* interfaces: reads go straight to the repository,
// transaction writes go through the service so each one enqueues a
// mirror message for the sync worker.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// ListTransactions implements records.TransactionLister
func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

// CreateTransaction implements records.TransactionWriter
func (a *SQLiteAdapter) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	return a.service.Create(ctx, t)
}

// UpdateTransaction implements records.TransactionWriter
func (a *SQLiteAdapter) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error {
	return a.service.Update(ctx, id, t)
}

// DeleteTransaction implements records.TransactionWriter
func (a *SQLiteAdapter) DeleteTransaction(ctx context.Context, id int64) error {
	return a.service.Delete(ctx, id)
}

// ListCategories implements records.CategoryStore
func (a *SQLiteAdapter) ListCategories(ctx context.Context) ([]string, error) {
	return a.storage.ListCategories(ctx)
}

// UpsertCategory implements records.CategoryStore
func (a *SQLiteAdapter) UpsertCategory(ctx context.Context, name string) error {
	return a.storage.UpsertCategory(ctx, name)
}

// ListBanks implements records.BankStore
func (a *SQLiteAdapter) ListBanks(ctx context.Context) ([]core.Bank, error) {
	return a.storage.ListBanks(ctx)
}

// GetBank implements records.BankStore
func (a *SQLiteAdapter) GetBank(ctx context.Context, name string) (core.Bank, bool, error) {
	return a.storage.GetBank(ctx, name)
}

// UpsertBank implements records.BankStore
func (a *SQLiteAdapter) UpsertBank(ctx context.Context, b core.Bank) error {
	return a.storage.UpsertBank(ctx, b)
}

// DeleteBank implements records.BankStore
func (a *SQLiteAdapter) DeleteBank(ctx context.Context, name string) error {
	return a.storage.DeleteBank(ctx, name)
}
