package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/bank"
	"github.com/Veraticus/spice-dashboard/internal/classification"
	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/engine"
	"github.com/Veraticus/spice-dashboard/internal/model"
	"github.com/Veraticus/spice-dashboard/internal/normalize"
	"github.com/Veraticus/spice-dashboard/internal/service"
	"github.com/Veraticus/spice-dashboard/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

type stubFetcher struct {
	fetchFn func(ctx context.Context) ([]bank.Record, error)
	calls   int
}

func (f *stubFetcher) FetchRecords(ctx context.Context) ([]bank.Record, error) {
	f.calls++
	return f.fetchFn(ctx)
}

// failingStore fails bulk saves while delegating everything else.
type failingStore struct {
	service.Storage
	err error
}

func (s *failingStore) SaveTransactions(context.Context, []model.Transaction) error {
	return s.err
}

func (s *failingStore) SaveImport(context.Context, string, []model.Transaction) error {
	return s.err
}

func newCoordinator(t *testing.T, store service.Storage, fetcher bank.Fetcher, ai *engine.MockCategorizer) *Coordinator {
	t.Helper()
	if ai == nil {
		ai = engine.NewMockCategorizer(nil)
	}
	pipeline := engine.New(classification.NewDefaultEngine(), ai, engine.Config{}, nil)
	return New(store, fetcher, pipeline, Config{
		Now:      func() time.Time { return fixedNow },
		MockDays: 30,
	}, nil)
}

func TestImportForUser_MockFallback(t *testing.T) {
	tests := []struct {
		fetcher bank.Fetcher
		name    string
	}{
		{name: "no fetcher configured", fetcher: nil},
		{name: "bank error", fetcher: &stubFetcher{fetchFn: func(context.Context) ([]bank.Record, error) {
			return nil, bank.ErrNoAPIKey
		}}},
		{name: "bank returns nothing", fetcher: &stubFetcher{fetchFn: func(context.Context) ([]bank.Record, error) {
			return []bank.Record{}, nil
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.SetupTestDB(t)
			c := newCoordinator(t, store, tt.fetcher, nil)
			ctx := context.Background()

			result, err := c.ImportForUser(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, bank.MockRecordCount, result.Imported)
			assert.Equal(t, "Successfully imported 30 transactions", result.Message)

			txns, err := store.ListTransactions(ctx, "u1", 0)
			require.NoError(t, err)
			require.Len(t, txns, bank.MockRecordCount)
			for _, txn := range txns {
				assert.NotEmpty(t, txn.ID)
				assert.Equal(t, "u1", txn.UserID)
				assert.NotEmpty(t, txn.Category)
				assert.NotEmpty(t, txn.Reason)
				assert.Equal(t, model.SourceBank, txn.Source)
				assert.GreaterOrEqual(t, txn.Amount, 0.0)
				assert.True(t, txn.Date.Before(fixedNow))
			}
		})
	}
}

func TestImportForUser_UsesBankRecords(t *testing.T) {
	store := testutil.SetupTestDB(t)
	fetcher := &stubFetcher{fetchFn: func(context.Context) ([]bank.Record, error) {
		return []bank.Record{
			{ID: "a1", Description: "KROGER #123", Amount: 54.2, TransactionDate: "2024-06-01", TransactionType: "withdrawal", Raw: json.RawMessage(`{"_id":"a1"}`)},
			{ID: "a2", Payee: "Employer", Amount: "1500", PurchaseDate: "2024-06-02", TransactionType: "deposit"},
		}, nil
	}}
	c := newCoordinator(t, store, fetcher, nil)

	result, err := c.ImportForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, fetcher.calls)

	txns, err := store.ListTransactions(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "Employer", txns[0].Description)
	assert.Equal(t, model.TypeCredit, txns[0].Type)
	assert.Equal(t, model.CategoryUncategorized, txns[0].Category)

	assert.Equal(t, "KROGER #123", txns[1].Description)
	assert.Equal(t, model.CategoryGroceries, txns[1].Category)
	assert.Equal(t, model.ReasonRuleMatch, txns[1].Reason)
	assert.JSONEq(t, `{"_id":"a1"}`, string(txns[1].Raw))
}

func TestImportForUser_Idempotent(t *testing.T) {
	store := testutil.SetupTestDB(t)
	c := newCoordinator(t, store, nil, nil)
	ctx := context.Background()

	first, err := c.ImportForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Positive(t, first.Imported)

	second, err := c.ImportForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Message: AlreadyImportedMessage}, second)

	count, err := store.CountTransactions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Imported, count)
}

func TestImportForUser_ExistingTransactionsWithoutMarker(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.SeedTransactions(t, store, testutil.TransactionFixture("u1", 0, "Legacy", 5))
	c := newCoordinator(t, store, nil, nil)

	result, err := c.ImportForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, AlreadyImportedMessage, result.Message)
}

func TestImportForUser_ConcurrentCallsImportOnce(t *testing.T) {
	store := testutil.SetupTestDB(t)
	c := newCoordinator(t, store, nil, nil)
	ctx := context.Background()

	results := make([]ImportResult, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.ImportForUser(ctx, "u1")
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, r := range results {
		if r.Imported > 0 {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	count, err := store.CountTransactions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, bank.MockRecordCount, count)
}

func TestImportForUser_SaveFailureCanBeRetried(t *testing.T) {
	db := testutil.SetupTestDB(t)
	boom := errors.New("disk full")
	ctx := context.Background()

	_, err := newCoordinator(t, &failingStore{Storage: db, err: boom}, nil, nil).ImportForUser(ctx, "u1")
	require.ErrorIs(t, err, boom)

	imported, err := db.HasImported(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, imported)

	result, err := newCoordinator(t, db, nil, nil).ImportForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, bank.MockRecordCount, result.Imported)
}

func TestImportForUser_CanceledRequestCanBeRetried(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	// The client goes away while the bank is being read.
	fetcher := &stubFetcher{fetchFn: func(context.Context) ([]bank.Record, error) {
		cancel()
		return bank.MockRecords(fixedNow, 30), nil
	}}
	c := newCoordinator(t, store, fetcher, nil)

	_, err := c.ImportForUser(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)

	retry, err := c.ImportForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Positive(t, retry.Imported)

	count, err := store.CountTransactions(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, retry.Imported, count)
}

func TestStripedLocks(t *testing.T) {
	var locks stripedLocks
	assert.Same(t, locks.forUser("u1"), locks.forUser("u1"))

	seen := map[*sync.Mutex]bool{}
	for i := range 1000 {
		seen[locks.forUser(fmt.Sprintf("user-%d", i))] = true
	}
	assert.LessOrEqual(t, len(seen), lockStripes)
}

func TestImportForUser_RequiresUser(t *testing.T) {
	c := newCoordinator(t, testutil.SetupTestDB(t), nil, nil)

	_, err := c.ImportForUser(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpload(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ai := engine.NewMockCategorizer(map[string]model.Categorization{
		"Blue Bottle": {Category: model.CategoryFoodDining, Reason: "Cafe purchase", Status: model.StatusClassifiedByAI},
	})
	c := newCoordinator(t, store, nil, ai)
	ctx := context.Background()

	// A prior import does not block uploads.
	_, err := c.ImportForUser(ctx, "u1")
	require.NoError(t, err)

	uploaded, err := c.Upload(ctx, "u1", []normalize.Row{
		{"date": "2024-01-01", "description": "Blue Bottle", "amount": "5.50", "type": "DEBIT"},
		{"Date": "2024-01-02", "Description": "Rent", "Amount": "1200", "Type": "debit"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, uploaded)

	txns, err := store.ListTransactions(ctx, "u1", 0)
	require.NoError(t, err)

	byDescription := map[string]model.Transaction{}
	for _, txn := range txns {
		if txn.Source == model.SourceCSV {
			byDescription[txn.Description] = txn
		}
	}
	require.Len(t, byDescription, 2)

	coffee := byDescription["Blue Bottle"]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), coffee.Date)
	assert.InDelta(t, 5.50, coffee.Amount, 0.001)
	assert.Equal(t, model.TypeDebit, coffee.Type)
	assert.Equal(t, model.CategoryFoodDining, coffee.Category)
	assert.Equal(t, "Cafe purchase", coffee.Reason)

	assert.Equal(t, model.CategoryHousing, byDescription["Rent"].Category)
}

func TestUpload_Empty(t *testing.T) {
	c := newCoordinator(t, testutil.SetupTestDB(t), nil, nil)

	uploaded, err := c.Upload(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Zero(t, uploaded)
}

func TestUpload_Progress(t *testing.T) {
	c := newCoordinator(t, testutil.SetupTestDB(t), nil, nil)

	var last int
	_, err := c.Upload(context.Background(), "u1",
		[]normalize.Row{{"description": "Uber"}, {"description": "Lyft"}, {"description": "Taxi"}},
		engine.WithProgress(func(done, _ int) { last = done }))
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}

func TestAddManual(t *testing.T) {
	tests := []struct {
		entry        normalize.ManualEntry
		name         string
		wantCategory string
		wantReason   string
		wantErr      string
		wantAICalls  int
	}{
		{
			name:         "rule match",
			entry:        normalize.ManualEntry{Date: "2024-02-10", Description: "Shell Gas Station", Amount: 40, Type: "debit"},
			wantCategory: model.CategoryTransportation,
			wantReason:   model.ReasonRuleMatch,
		},
		{
			name:         "ai fallback",
			entry:        normalize.ManualEntry{Date: "2024-02-10", Description: "Mystery vendor", Amount: "12.5", Type: "debit"},
			wantCategory: model.CategoryUncategorized,
			wantReason:   model.ReasonFallback,
			wantAICalls:  1,
		},
		{
			name:         "user category wins",
			entry:        normalize.ManualEntry{Date: "2024-02-10", Description: "Walmart", Amount: 20, Type: "debit", Category: "shopping"},
			wantCategory: model.CategoryShopping,
			wantReason:   model.ReasonUserSpecified,
		},
		{
			name:    "missing description",
			entry:   normalize.ManualEntry{Date: "2024-02-10", Amount: 20, Type: "debit"},
			wantErr: normalize.MissingManualFields,
		},
		{
			name:    "invalid date",
			entry:   normalize.ManualEntry{Date: "yesterday", Description: "x", Amount: 20, Type: "debit"},
			wantErr: "Invalid date: yesterday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.SetupTestDB(t)
			ai := engine.NewMockCategorizer(nil)
			c := newCoordinator(t, store, nil, ai)
			ctx := context.Background()

			txn, err := c.AddManual(ctx, "u1", tt.entry)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, common.ErrValidation)
				assert.Equal(t, tt.wantErr, common.UserMessage(err))

				count, countErr := store.CountTransactions(ctx, "u1")
				require.NoError(t, countErr)
				assert.Zero(t, count, "nothing persisted")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, txn.Category)
			assert.Equal(t, tt.wantReason, txn.Reason)
			assert.Len(t, ai.Calls(), tt.wantAICalls)

			stored, err := store.ListTransactions(ctx, "u1", 0)
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, txn.ID, stored[0].ID)
			assert.Equal(t, tt.entry.Description, stored[0].Description)
			assert.Equal(t, "2024-02-10", stored[0].Date.Format("2006-01-02"))
			assert.Equal(t, model.TypeDebit, stored[0].Type)
			assert.Equal(t, model.SourceManual, stored[0].Source)
		})
	}
}

func TestList(t *testing.T) {
	store := testutil.SetupTestDB(t)
	var seed []model.Transaction
	for i := range 5 {
		seed = append(seed, testutil.TransactionFixture("u1", i, "Item", float64(i)))
	}
	testutil.SeedTransactions(t, store, seed...)

	pipeline := engine.New(classification.NewDefaultEngine(), engine.NewMockCategorizer(nil), engine.Config{}, nil)
	c := New(store, nil, pipeline, Config{ListLimit: 3}, nil)

	txns, err := c.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "u1-004", txns[0].ID)

	empty, err := c.List(context.Background(), "u2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
