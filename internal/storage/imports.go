package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// HasImported reports whether the user's one-time import has been stored.
func (s *SQLiteStorage) HasImported(ctx context.Context, userID string) (bool, error) {
	if err := validateUserScope(ctx, userID); err != nil {
		return false, err
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM import_markers WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to read import marker: %w", err)
	}
	return n > 0, nil
}

// SaveImport stores the user's import marker together with the imported
// transactions. The marker commits only with the rows, so a failed save
// leaves the user free to import again. A second import for the same user
// returns common.ErrAlreadyImported and writes nothing.
func (s *SQLiteStorage) SaveImport(ctx context.Context, userID string, transactions []model.Transaction) error {
	if err := validateUserScope(ctx, userID); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO import_markers (user_id, imported_at) VALUES (?, ?)`,
			userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to write import marker: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read import marker result: %w", err)
		}
		if affected == 0 {
			return common.ErrAlreadyImported
		}

		return s.saveTransactionsTx(ctx, tx, transactions)
	})
}
