package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
// Migrate fails if the database ends up anywhere else.
const ExpectedSchemaVersion = 2

// schemaStep moves the schema forward by one version.
type schemaStep struct {
	name       string
	statements []string
	version    int
}

var migrations = []schemaStep{
	{
		version: 1,
		name:    "transactions table",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				id          TEXT PRIMARY KEY,
				user_id     TEXT NOT NULL,
				date        DATETIME NOT NULL,
				description TEXT NOT NULL,
				amount      REAL NOT NULL CHECK (amount >= 0),
				type        TEXT NOT NULL CHECK (type IN ('debit', 'credit')),
				source      TEXT NOT NULL,
				category    TEXT NOT NULL,
				reason      TEXT NOT NULL DEFAULT '',
				raw         TEXT,
				created_at  DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)`,
		},
	},
	{
		version: 2,
		name:    "import markers",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS import_markers (
				user_id     TEXT PRIMARY KEY,
				imported_at DATETIME NOT NULL
			)`,
		},
	},
}

// SchemaVersion reports the version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate brings the schema up to ExpectedSchemaVersion. Each step commits
// together with its version bump, so an interrupted run resumes cleanly.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, step := range migrations {
		if step.version <= current {
			continue
		}
		if err := s.withTx(ctx, step.apply(ctx)); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.version, step.name, err)
		}
		slog.Info("Applied migration", "version", step.version, "name", step.name)
		current = step.version
	}

	if current != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, current)
	}
	return nil
}

func (m schemaStep) apply(ctx context.Context) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	}
}
