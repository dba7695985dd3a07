package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	tests := []struct {
		name         string
		transactions func() []model.Transaction
		wantErr      error
		wantCount    int
	}{
		{
			name:         "save new transactions",
			transactions: func() []model.Transaction { return createTestTransactions("u1", 3) },
			wantCount:    3,
		},
		{
			name:         "empty slice",
			transactions: func() []model.Transaction { return []model.Transaction{} },
			wantErr:      ErrEmptySlice,
		},
		{
			name: "uncategorized transaction rejected",
			transactions: func() []model.Transaction {
				txns := createTestTransactions("u1", 2)
				txns[1].Category = ""
				return txns
			},
			wantErr: ErrInvalidTransaction,
		},
		{
			name: "duplicate id rolls back the whole batch",
			transactions: func() []model.Transaction {
				txns := createTestTransactions("u1", 3)
				txns[2].ID = txns[0].ID
				return txns
			},
			wantErr: common.ErrDuplicateEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			ctx := context.Background()

			err := store.SaveTransactions(ctx, tt.transactions())
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantCount == 0:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}

			count, err := store.CountTransactions(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestSQLiteStorage_SaveTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	txn := createTestTransactions("u1", 1)[0]
	txn.Source = model.SourceManual
	txn.Reason = model.ReasonUserSpecified
	require.NoError(t, store.SaveTransaction(ctx, &txn))

	got, err := store.ListTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.SourceManual, got[0].Source)

	assert.ErrorIs(t, store.SaveTransaction(ctx, nil), ErrNilParameter)
}

func TestSQLiteStorage_ListTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, createTestTransactions("u1", 5)))
	require.NoError(t, store.SaveTransactions(ctx, createTestTransactions("u2", 2)))

	t.Run("newest first", func(t *testing.T) {
		got, err := store.ListTransactions(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].Date.After(got[i].Date), "descending dates")
		}
		assert.Equal(t, "u1-txn-5", got[0].ID)
	})

	t.Run("limit applies", func(t *testing.T) {
		got, err := store.ListTransactions(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("scoped to user", func(t *testing.T) {
		got, err := store.ListTransactions(ctx, "u2", 500)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, txn := range got {
			assert.Equal(t, "u2", txn.UserID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		got, err := store.ListTransactions(ctx, "nobody", 500)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty user id", func(t *testing.T) {
		_, err := store.ListTransactions(ctx, "", 500)
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestSQLiteStorage_RoundTripFields(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	local := time.FixedZone("EST", -5*3600)
	want := model.Transaction{
		ID:          "t-1",
		UserID:      "u1",
		Date:        time.Date(2024, 1, 31, 22, 30, 0, 0, local),
		Description: "ACME PAYROLL",
		Amount:      2500.55,
		Type:        model.TypeCredit,
		Source:      model.SourceBank,
		Category:    model.CategoryIncome,
		Reason:      model.ReasonRuleMatch,
		Raw:         json.RawMessage(`{"_id":"abc","amount":2500.55}`),
		CreatedAt:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTransaction(ctx, &want))

	got, err := store.ListTransactions(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, want.Date.Equal(got[0].Date))
	assert.Equal(t, time.UTC, got[0].Date.Location())
	assert.Equal(t, "2024-02", got[0].Month(), "stored in UTC")
	assert.Equal(t, want.Description, got[0].Description)
	assert.InDelta(t, want.Amount, got[0].Amount, 0.001)
	assert.Equal(t, want.Type, got[0].Type)
	assert.Equal(t, want.Source, got[0].Source)
	assert.Equal(t, want.Category, got[0].Category)
	assert.Equal(t, want.Reason, got[0].Reason)
	assert.JSONEq(t, string(want.Raw), string(got[0].Raw))
	assert.True(t, want.CreatedAt.Equal(got[0].CreatedAt))
}
