package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"financas/internal/core"
	"financas/internal/records"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository is the embedded-database adapter for the record store
// ports. Writes additionally maintain the sync columns consumed by the
// sheet-mirror worker.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

// migrateSchema brings the open database up to the embedded schema. It runs
// on the repository's own connection; the migrate instance is deliberately
// not closed, since closing it would close that connection too.
func migrateSchema(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions implements records.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTransaction implements records.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		AmountCents: t.Amount.Cents,
		TxDate:      t.Date.ISO(),
		Category:    t.Category,
		Bank:        t.Bank,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.ISO(),
		"bank", t.Bank,
		"category", t.Category)

	return id, nil
}

// UpdateTransaction implements records.TransactionWriter. The row's version
// is bumped and its sync status reset so the worker mirrors the change.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error {
	affected, err := r.queries.UpdateTransaction(ctx, id, CreateTransactionParams{
		AmountCents: t.Amount.Cents,
		TxDate:      t.Date.ISO(),
		Category:    t.Category,
		Bank:        t.Bank,
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}
	return nil
}

// DeleteTransaction implements records.TransactionWriter.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}
	return nil
}

// ListCategories implements records.CategoryStore.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// UpsertCategory implements records.CategoryStore.
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if err := r.queries.UpsertCategory(ctx, name); err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// ListBanks implements records.BankStore.
func (r *SQLiteRepository) ListBanks(ctx context.Context) ([]core.Bank, error) {
	rows, err := r.queries.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	out := make([]core.Bank, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Bank{
			Name:           row.Name,
			OpeningBalance: core.Money{Cents: row.OpeningBalanceCents},
		})
	}
	return out, nil
}

// GetBank implements records.BankStore.
func (r *SQLiteRepository) GetBank(ctx context.Context, name string) (core.Bank, bool, error) {
	row, err := r.queries.GetBank(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bank{}, false, nil
	}
	if err != nil {
		return core.Bank{}, false, fmt.Errorf("get bank: %w", err)
	}
	return core.Bank{Name: row.Name, OpeningBalance: core.Money{Cents: row.OpeningBalanceCents}}, true, nil
}

// UpsertBank implements records.BankStore.
func (r *SQLiteRepository) UpsertBank(ctx context.Context, b core.Bank) error {
	if err := r.queries.UpsertBank(ctx, b.Name, b.OpeningBalance.Cents); err != nil {
		return fmt.Errorf("upsert bank: %w", err)
	}
	return nil
}

// DeleteBank implements records.BankStore. Referencing transactions are left
// untouched; the aggregation engine synthesizes a zero-opening entry for
// them afterwards.
func (r *SQLiteRepository) DeleteBank(ctx context.Context, name string) error {
	affected, err := r.queries.DeleteBank(ctx, name)
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}
	return nil
}

// PendingSyncTransaction carries the data the sync worker needs for one
// catch-up item.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns transactions not yet mirrored to the
// remote sheet.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.queries.ListPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	out := make([]PendingSyncTransaction, len(rows))
	for i, row := range rows {
		out[i] = PendingSyncTransaction{ID: row.ID, Version: row.Version, CreatedAt: row.CreatedAt}
	}
	return out, nil
}

// GetTransaction retrieves a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, records.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rowToTransaction(row)
}

// MarkSynced marks a transaction as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction whose mirroring failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func rowToTransaction(row TransactionRow) (core.Transaction, error) {
	d, err := core.ParseDate(row.TxDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has malformed date %q: %w", row.ID, row.TxDate, err)
	}
	return core.Transaction{
		ID:       row.ID,
		Amount:   core.Money{Cents: row.AmountCents},
		Date:     d,
		Category: row.Category,
		Bank:     row.Bank,
	}, nil
}
