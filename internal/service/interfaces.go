// Package service holds the contracts shared between packages that should
// not import each other.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

// TransactionStore reads and writes categorized transactions.
type TransactionStore interface {
	CountTransactions(ctx context.Context, userID string) (int, error)
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	SaveTransaction(ctx context.Context, transaction *model.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
}

// ImportMarkers guards the one-time bank import per user. SaveImport
// commits the marker and the rows together and returns
// common.ErrAlreadyImported for every caller after the first.
type ImportMarkers interface {
	HasImported(ctx context.Context, userID string) (bool, error)
	SaveImport(ctx context.Context, userID string, transactions []model.Transaction) error
}

// Storage is everything the importer needs from persistence.
type Storage interface {
	TransactionStore
	ImportMarkers

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions tunes common.WithRetry. Zero fields take defaults.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
