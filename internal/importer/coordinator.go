// Package importer coordinates getting transactions into storage: the
// one-time bank import, bulk uploads and manual entries.
package importer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-dashboard/internal/bank"
	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/engine"
	"github.com/Veraticus/spice-dashboard/internal/model"
	"github.com/Veraticus/spice-dashboard/internal/normalize"
	"github.com/Veraticus/spice-dashboard/internal/service"
)

// Messages returned by ImportForUser.
const (
	AlreadyImportedMessage = "Transactions already imported. Use refresh to reload."
	importedMessageFormat  = "Successfully imported %d transactions"
)

// DefaultListLimit caps List when no limit is configured.
const DefaultListLimit = 500

// Pipeline categorizes normalized transactions.
type Pipeline interface {
	CategorizeOne(ctx context.Context, txn model.Transaction) model.Categorization
	CategorizeBatch(ctx context.Context, txns []model.Transaction, opts ...engine.BatchOption) ([]model.Transaction, engine.BatchSummary)
}

// Config tunes a Coordinator.
type Config struct {
	Now       func() time.Time
	MockDays  int
	ListLimit int
}

// ImportResult is the outcome of ImportForUser.
type ImportResult struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// Coordinator owns the write paths into storage. Every transaction it
// persists has been through the categorization pipeline.
type Coordinator struct {
	store      service.Storage
	fetcher    bank.Fetcher
	pipeline   Pipeline
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	now        func() time.Time
	locks      stripedLocks
	mockDays   int
	listLimit  int
}

// New creates a coordinator. A nil fetcher always imports the mock dataset.
func New(store service.Storage, fetcher bank.Fetcher, pipeline Pipeline, cfg Config, logger *slog.Logger) *Coordinator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	listLimit := cfg.ListLimit
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}

	return &Coordinator{
		store:      store,
		fetcher:    fetcher,
		pipeline:   pipeline,
		normalizer: normalize.NewWithClock(now),
		logger:     common.ComponentLogger(logger, "importer"),
		now:        now,
		mockDays:   cfg.MockDays,
		listLimit:  listLimit,
	}
}

// ImportForUser runs the user's one-time import. A user who already has
// transactions, or whose import has been stored, gets a zero-count result
// and no error. A failed import stores nothing and can be retried.
func (c *Coordinator) ImportForUser(ctx context.Context, userID string, opts ...engine.BatchOption) (ImportResult, error) {
	if err := requireUser(userID); err != nil {
		return ImportResult{}, err
	}

	mu := c.locks.forUser(userID)
	mu.Lock()
	defer mu.Unlock()

	done, err := c.importDone(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}
	if done {
		c.logger.Debug("Skipping import", "user", userID, "reason", common.ErrAlreadyImported)
		return alreadyImported(), nil
	}

	txns := c.normalizer.FromBank(c.acquire(ctx))
	if len(txns) == 0 {
		return ImportResult{Message: fmt.Sprintf(importedMessageFormat, 0)}, nil
	}

	categorized := c.categorize(ctx, userID, txns, opts...)
	err = c.store.SaveImport(ctx, userID, categorized)
	switch {
	case errors.Is(err, common.ErrAlreadyImported):
		c.logger.Info("Import already stored by another process", "user", userID)
		return alreadyImported(), nil
	case err != nil:
		return ImportResult{}, fmt.Errorf("failed to save transactions: %w", err)
	}

	c.logger.Info("Imported transactions", "user", userID, "count", len(categorized))
	return ImportResult{
		Imported: len(categorized),
		Message:  fmt.Sprintf(importedMessageFormat, len(categorized)),
	}, nil
}

// importDone checks the marker and, for users whose data predates markers,
// whether any transactions exist.
func (c *Coordinator) importDone(ctx context.Context, userID string) (bool, error) {
	imported, err := c.store.HasImported(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check import marker: %w", err)
	}
	if imported {
		return true, nil
	}

	count, err := c.store.CountTransactions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing transactions: %w", err)
	}
	return count > 0, nil
}

// Upload categorizes and stores client-supplied CSV rows. It ignores import
// state entirely.
func (c *Coordinator) Upload(ctx context.Context, userID string, rows []normalize.Row, opts ...engine.BatchOption) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}

	saved, err := c.categorizeAndSave(ctx, userID, c.normalizer.FromRows(rows), opts...)
	if err != nil {
		return 0, err
	}

	c.logger.Info("Uploaded transactions", "user", userID, "count", saved)
	return saved, nil
}

// AddManual validates, categorizes and stores one transaction. A supplied
// category is kept as the user's choice.
func (c *Coordinator) AddManual(ctx context.Context, userID string, entry normalize.ManualEntry) (model.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return model.Transaction{}, err
	}

	txn, err := c.normalizer.FromManual(entry)
	if err != nil {
		return model.Transaction{}, err
	}

	if !txn.IsCategorized() {
		txn.Apply(c.pipeline.CategorizeOne(ctx, txn))
	}
	c.stamp(userID, &txn)

	if err := c.store.SaveTransaction(ctx, &txn); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	return txn, nil
}

// List returns the user's most recent transactions, newest first.
func (c *Coordinator) List(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	txns, err := c.store.ListTransactions(ctx, userID, c.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return txns, nil
}

func (c *Coordinator) categorize(ctx context.Context, userID string, txns []model.Transaction, opts ...engine.BatchOption) []model.Transaction {
	categorized, _ := c.pipeline.CategorizeBatch(ctx, txns, opts...)
	for i := range categorized {
		c.stamp(userID, &categorized[i])
	}
	return categorized
}

func (c *Coordinator) categorizeAndSave(ctx context.Context, userID string, txns []model.Transaction, opts ...engine.BatchOption) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	categorized := c.categorize(ctx, userID, txns, opts...)
	if err := c.store.SaveTransactions(ctx, categorized); err != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	return len(categorized), nil
}

// acquire fetches bank records, substituting the mock dataset whenever the
// bank yields nothing usable.
func (c *Coordinator) acquire(ctx context.Context) []bank.Record {
	if c.fetcher == nil {
		c.logger.Warn("No bank fetcher configured, using mock data")
		return bank.MockRecords(c.now(), c.mockDays)
	}

	records, err := c.fetcher.FetchRecords(ctx)
	if err != nil {
		c.logger.Warn("Bank fetch failed, using mock data", "error", err)
		return bank.MockRecords(c.now(), c.mockDays)
	}
	if len(records) == 0 {
		c.logger.Warn("Bank returned no transactions, using mock data")
		return bank.MockRecords(c.now(), c.mockDays)
	}

	return records
}

func (c *Coordinator) stamp(userID string, txn *model.Transaction) {
	txn.ID = uuid.NewString()
	txn.UserID = userID
	txn.CreatedAt = c.now().UTC()
}

// lockStripes bounds the lock table; users sharing a stripe only serialize
// their imports.
const lockStripes = 64

type stripedLocks [lockStripes]sync.Mutex

func (l *stripedLocks) forUser(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &l[h.Sum32()%lockStripes]
}

func alreadyImported() ImportResult {
	return ImportResult{Message: AlreadyImportedMessage}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return common.NewValidationError("User id is required")
	}
	return nil
}
