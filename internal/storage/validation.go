package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

// Argument errors returned before any query runs.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s, name string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

// validateUserScope checks the arguments shared by every per-user query.
func validateUserScope(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return validateString(userID, "userID")
}

func validateTransactions(txns []model.Transaction) error {
	switch {
	case txns == nil:
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	case len(txns) == 0:
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range txns {
		if err := validateTransaction(&txns[i]); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction only admits rows that have been categorized.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}

	var problem string
	switch {
	case txn.ID == "":
		problem = "missing ID"
	case strings.TrimSpace(txn.UserID) == "":
		problem = "missing user ID"
	case txn.Date.IsZero():
		problem = "missing date"
	case txn.Amount < 0:
		problem = fmt.Sprintf("negative amount %.2f", txn.Amount)
	case txn.Type != model.TypeDebit && txn.Type != model.TypeCredit:
		problem = fmt.Sprintf("unknown type %q", txn.Type)
	case !txn.IsCategorized():
		problem = "missing category"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransaction, problem)
}
