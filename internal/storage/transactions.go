package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// transactionSelect joins each transaction to its category so reads carry
// the denormalized category name and kind.
const transactionSelect = `
	SELECT t.id, t.posted_date, t.description, t.amount_cents, t.category_id, t.created_at,
	       c.name, c.kind
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn          model.Transaction
		amount       int64
		categoryID   sql.NullString
		categoryName sql.NullString
		categoryKind sql.NullInt64
	)
	if err := row.Scan(
		&txn.ID,
		&txn.PostedDate,
		&txn.Description,
		&amount,
		&categoryID,
		&txn.CreatedAt,
		&categoryName,
		&categoryKind,
	); err != nil {
		return nil, err
	}

	txn.AmountCents = model.Cents(amount)
	if categoryID.Valid {
		id := categoryID.String
		txn.CategoryID = &id
	}
	if categoryName.Valid {
		name := categoryName.String
		txn.CategoryName = &name
	}
	if categoryKind.Valid {
		kind := model.CategoryKind(categoryKind.Int64)
		txn.CategoryKind = &kind
	}
	return &txn, nil
}

func nullableID(id *string) sql.NullString {
	if id == nil || *id == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *id, Valid: true}
}

// CreateTransaction inserts a new transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.createTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, posted_date, description, amount_cents, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.PostedDate,
		txn.Description,
		int64(txn.AmountCents),
		nullableID(txn.CategoryID),
		txn.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return common.NewNotFoundError("category", *txn.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}

	slog.Debug("created transaction", "id", txn.ID, "posted_date", txn.PostedDate.String(), "amount_cents", int64(txn.AmountCents))
	return nil
}

// GetTransactionByID retrieves a transaction with its category projection.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFoundError("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions retrieves transactions matching every supplied filter,
// newest posted date first, then by description.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.From != nil {
		conditions = append(conditions, "t.posted_date >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "t.posted_date <= ?")
		args = append(args, *filter.To)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Kind != nil {
		// Uncategorized rows have a NULL kind and never match.
		conditions = append(conditions, "c.kind = ?")
		args = append(args, int(*filter.Kind))
	}

	query := transactionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.posted_date DESC, t.description ASC, t.id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// UpdateTransaction overwrites every mutable field of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.updateTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET posted_date = ?, description = ?, amount_cents = ?, category_id = ?
		WHERE id = ?`,
		txn.PostedDate,
		txn.Description,
		int64(txn.AmountCents),
		nullableID(txn.CategoryID),
		txn.ID,
	)
	if isForeignKeyViolation(err) {
		return common.NewNotFoundError("category", *txn.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}

	if err := requireRowAffected(result, "transaction", txn.ID); err != nil {
		return err
	}

	slog.Debug("updated transaction", "id", txn.ID)
	return nil
}

// DeleteTransaction permanently removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if err := requireRowAffected(result, "transaction", id); err != nil {
		return err
	}

	slog.Debug("deleted transaction", "id", id)
	return nil
}
