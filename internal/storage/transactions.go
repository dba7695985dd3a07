package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

const transactionColumns = `id, user_id, date, description, amount, type, source, category, reason, raw, created_at`

// CountTransactions returns how many transactions the user owns.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, userID string) (int, error) {
	if err := validateUserScope(ctx, userID); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SaveTransactions inserts all transactions in one database transaction.
// Either every row is written or none is.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveTransactionsTx(ctx, tx, transactions)
	})
}

// SaveTransaction inserts a single transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, transaction *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(transaction); err != nil {
		return err
	}

	return s.insertTransaction(ctx, s.db, transaction)
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	for i := range transactions {
		if err := s.insertTransaction(ctx, tx, &transactions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) insertTransaction(ctx context.Context, q queryable, txn *model.Transaction) error {
	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var raw sql.NullString
	if len(txn.Raw) > 0 {
		raw = sql.NullString{String: string(txn.Raw), Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.UserID,
		txn.Date.UTC(),
		txn.Description,
		txn.Amount,
		string(txn.Type),
		string(txn.Source),
		txn.Category,
		txn.Reason,
		raw,
		createdAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// ListTransactions returns the user's transactions newest first.
// A non-positive limit returns everything.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	if err := validateUserScope(ctx, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn       model.Transaction
		txnType   string
		source    string
		raw       sql.NullString
		date      time.Time
		createdAt time.Time
	)

	err := rows.Scan(
		&txn.ID,
		&txn.UserID,
		&date,
		&txn.Description,
		&txn.Amount,
		&txnType,
		&source,
		&txn.Category,
		&txn.Reason,
		&raw,
		&createdAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Date = date.UTC()
	txn.CreatedAt = createdAt.UTC()
	txn.Type = model.TransactionType(txnType)
	txn.Source = model.Source(source)
	if raw.Valid && raw.String != "" {
		txn.Raw = json.RawMessage(raw.String)
	}

	return txn, nil
}
