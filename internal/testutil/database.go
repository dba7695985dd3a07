// Package testutil provides shared helpers for tests that need a real database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/model"
	"github.com/Veraticus/spice-dashboard/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite store that is closed
// automatically when the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return store
}

// TransactionFixture builds a categorized debit owned by userID, one day
// apart per index starting on 2024-01-01.
func TransactionFixture(userID string, i int, description string, amount float64) model.Transaction {
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	return model.Transaction{
		ID:          fmt.Sprintf("%s-%03d", userID, i),
		UserID:      userID,
		Date:        date,
		CreatedAt:   date,
		Description: description,
		Amount:      amount,
		Type:        model.TypeDebit,
		Source:      model.SourceCSV,
		Category:    model.CategoryUncategorized,
		Reason:      model.ReasonFallback,
	}
}

// SeedTransactions saves txns or fails the test.
func SeedTransactions(t *testing.T, store *storage.SQLiteStorage, txns ...model.Transaction) {
	t.Helper()

	if err := store.SaveTransactions(context.Background(), txns); err != nil {
		t.Fatalf("failed to seed transactions: %v", err)
	}
}
