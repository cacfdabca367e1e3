// Package store persists transactions and budgets in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/corpus"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed transaction and budget repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path with WAL enabled and
// the schema in place. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	amount TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT,
	label_source TEXT,
	description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

CREATE TABLE IF NOT EXISTS budgets (
	category TEXT PRIMARY KEY,
	monthly_limit TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return addLabelSourceColumn(ctx, db)
}

// addLabelSourceColumn upgrades databases created before labels carried
// their provenance. Existing labels are treated as manual.
func addLabelSourceColumn(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info('transactions') WHERE name = 'label_source'").Scan(&n); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, "ALTER TABLE transactions ADD COLUMN label_source TEXT"); err != nil {
		return fmt.Errorf("failed to add label_source column: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		"UPDATE transactions SET label_source = ? WHERE category IS NOT NULL", string(models.LabelManual)); err != nil {
		return fmt.Errorf("failed to backfill label_source: %w", err)
	}
	return nil
}

// Count returns the number of stored transactions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

const insertTransaction = `INSERT INTO transactions (date, raw_text, amount, type, category, label_source, description)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// SaveTransaction inserts one transaction and returns it with its ID.
func (s *Store) SaveTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	res, err := s.db.ExecContext(ctx, insertTransaction,
		tx.Date, tx.RawText, tx.Amount.String(), string(tx.Type), nullable(tx.Category), labelSource(tx), tx.Description)
	if err != nil {
		return tx, fmt.Errorf("failed to save transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return tx, fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id
	return tx, nil
}

// InsertTransactions inserts a batch in one database transaction.
func (s *Store) InsertTransactions(ctx context.Context, txs []models.Transaction) (err error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbtx.Rollback()
		}
	}()

	stmt, err := dbtx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if _, err = stmt.ExecContext(ctx, tx.Date, tx.RawText, tx.Amount.String(), string(tx.Type),
			nullable(tx.Category), labelSource(tx), tx.Description); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}
	if err = dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

const selectTransaction = `SELECT id, date, raw_text, amount, type, category, label_source, description FROM transactions`

// ListTransactions returns every transaction, newest first.
func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.query(ctx, selectTransaction+" ORDER BY id DESC")
}

// Unlabeled returns the transactions awaiting a prediction: rows without a
// category and rows a prediction left as Uncategorized.
func (s *Store) Unlabeled(ctx context.Context) ([]models.Transaction, error) {
	return s.query(ctx, selectTransaction+" WHERE category IS NULL OR (category = ? AND label_source = ?) ORDER BY id",
		models.CategoryUncategorized, string(models.LabelPredicted))
}

// LabeledSince returns categorized transactions dated on or after since.
func (s *Store) LabeledSince(ctx context.Context, since string) ([]models.Transaction, error) {
	return s.query(ctx, selectTransaction+" WHERE category IS NOT NULL AND date >= ? ORDER BY id", since)
}

// LabeledRows returns the training corpus held in the database: manually
// labeled rows only, never the Uncategorized sentinel.
func (s *Store) LabeledRows(ctx context.Context) ([]corpus.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT raw_text, category FROM transactions WHERE category IS NOT NULL AND category <> ? AND label_source = ? ORDER BY id",
		models.CategoryUncategorized, string(models.LabelManual))
	if err != nil {
		return nil, fmt.Errorf("failed to query labeled rows: %w", err)
	}
	defer rows.Close()

	var out []corpus.Row
	for rows.Next() {
		var (
			text     string
			category sql.NullString
		)
		if err := rows.Scan(&text, &category); err != nil {
			return nil, fmt.Errorf("failed to scan labeled row: %w", err)
		}
		row := corpus.Row{RawText: text}
		if category.Valid {
			c := category.String
			row.Category = &c
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateCategories records predicted categories for each transaction ID in
// one batch.
func (s *Store) UpdateCategories(ctx context.Context, categories map[int64]string) (err error) {
	if len(categories) == 0 {
		return nil
	}
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbtx.Rollback()
		}
	}()

	stmt, err := dbtx.PrepareContext(ctx, "UPDATE transactions SET category = ?, label_source = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for id, category := range categories {
		if _, err = stmt.ExecContext(ctx, category, string(models.LabelPredicted), id); err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", id, err)
		}
	}
	if err = dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category updates: %w", err)
	}
	return nil
}

// SpendingByCategory sums categorized DEBIT amounts dated on or after since.
func (s *Store) SpendingByCategory(ctx context.Context, since string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, amount FROM transactions WHERE type = ? AND category IS NOT NULL AND date >= ?",
		string(models.DirectionDebit), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		totals[category] = totals[category].Add(d)
	}
	return totals, rows.Err()
}

// SetBudget inserts or replaces the limit for a category.
func (s *Store) SetBudget(ctx context.Context, b models.Budget) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO budgets (category, monthly_limit) VALUES (?, ?)",
		b.Category, b.MonthlyLimit.String()); err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	return nil
}

// Budgets returns every budget ordered by category.
func (s *Store) Budgets(ctx context.Context) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT category, monthly_limit FROM budgets ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var out []models.Budget
	for rows.Next() {
		var category, limit string
		if err := rows.Scan(&category, &limit); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		d, err := decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid stored limit %q: %w", limit, err)
		}
		out = append(out, models.Budget{Category: category, MonthlyLimit: d})
	}
	return out, rows.Err()
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var (
		tx       models.Transaction
		amount   string
		kind     string
		category sql.NullString
		source   sql.NullString
	)
	if err := rows.Scan(&tx.ID, &tx.Date, &tx.RawText, &amount, &kind, &category, &source, &tx.Description); err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return tx, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Amount = d
	tx.Type = models.Direction(kind)
	if category.Valid {
		c := category.String
		tx.Category = &c
		tx.LabelSource = models.LabelSource(source.String)
	}
	return tx, nil
}

// labelSource is NULL for unlabeled rows; a label without a recorded
// source counts as manual.
func labelSource(tx models.Transaction) interface{} {
	if tx.Category == nil {
		return nil
	}
	if tx.LabelSource == "" {
		return string(models.LabelManual)
	}
	return string(tx.LabelSource)
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
