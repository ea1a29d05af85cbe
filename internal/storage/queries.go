package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds the raw SQL surface of the repository.
type Queries struct {
	db DBTX
}

// TransactionRow mirrors a row of the transactions table.
type TransactionRow struct {
	ID          int64
	AmountCents int64
	TxDate      string
	Category    string
	Bank        string
	SyncStatus  string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BankRow mirrors a row of the banks table.
type BankRow struct {
	Name                string
	OpeningBalanceCents int64
}

const listTransactions = `
SELECT id, amount_cents, tx_date, category, bank, sync_status, version, created_at, updated_at
FROM transactions
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.AmountCents, &r.TxDate, &r.Category, &r.Bank,
			&r.SyncStatus, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getTransaction = `
SELECT id, amount_cents, tx_date, category, bank, sync_status, version, created_at, updated_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	var r TransactionRow
	err := q.db.QueryRowContext(ctx, getTransaction, id).Scan(
		&r.ID, &r.AmountCents, &r.TxDate, &r.Category, &r.Bank,
		&r.SyncStatus, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const createTransaction = `
INSERT INTO transactions (amount_cents, tx_date, category, bank)
VALUES (?, ?, ?, ?)
`

type CreateTransactionParams struct {
	AmountCents int64
	TxDate      string
	Category    string
	Bank        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.AmountCents, arg.TxDate, arg.Category, arg.Bank)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateTransaction = `
UPDATE transactions
SET amount_cents = ?, tx_date = ?, category = ?, bank = ?,
    sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, id int64, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.AmountCents, arg.TxDate, arg.Category, arg.Bank, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPendingSync = `
SELECT id, amount_cents, tx_date, category, bank, sync_status, version, created_at, updated_at
FROM transactions
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?
`

func (q *Queries) ListPendingSync(ctx context.Context, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listPendingSync, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.AmountCents, &r.TxDate, &r.Category, &r.Bank,
			&r.SyncStatus, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const markTransactionSynced = `
UPDATE transactions SET sync_status = 'synced', updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const markTransactionSyncError = `
UPDATE transactions SET sync_status = 'error', updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}

const listBanks = `
SELECT name, opening_balance_cents FROM banks ORDER BY name
`

func (q *Queries) ListBanks(ctx context.Context) ([]BankRow, error) {
	rows, err := q.db.QueryContext(ctx, listBanks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankRow
	for rows.Next() {
		var r BankRow
		if err := rows.Scan(&r.Name, &r.OpeningBalanceCents); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getBank = `
SELECT name, opening_balance_cents FROM banks WHERE name = ?
`

func (q *Queries) GetBank(ctx context.Context, name string) (BankRow, error) {
	var r BankRow
	err := q.db.QueryRowContext(ctx, getBank, name).Scan(&r.Name, &r.OpeningBalanceCents)
	return r, err
}

const upsertBank = `
INSERT INTO banks (name, opening_balance_cents)
VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET
    opening_balance_cents = excluded.opening_balance_cents,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertBank(ctx context.Context, name string, openingBalanceCents int64) error {
	_, err := q.db.ExecContext(ctx, upsertBank, name, openingBalanceCents)
	return err
}

const deleteBank = `
DELETE FROM banks WHERE name = ?
`

func (q *Queries) DeleteBank(ctx context.Context, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBank, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listCategories = `
SELECT name FROM categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	return items, rows.Err()
}

const upsertCategory = `
INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING
`

func (q *Queries) UpsertCategory(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, upsertCategory, name)
	return err
}
