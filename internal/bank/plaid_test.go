package bank

import (
	"testing"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/common"
)

func TestPlaidConfigValidate(t *testing.T) {
	valid := PlaidConfig{ClientID: "id", Secret: "s", Environment: "sandbox", AccessToken: "tok"}

	tests := []struct {
		name    string
		mutate  func(*PlaidConfig)
		wantErr error
	}{
		{"valid", func(*PlaidConfig) {}, nil},
		{"missing client id", func(c *PlaidConfig) { c.ClientID = "" }, ErrNoAPIKey},
		{"missing secret", func(c *PlaidConfig) { c.Secret = "" }, ErrNoAPIKey},
		{"missing token", func(c *PlaidConfig) { c.AccessToken = "" }, common.ErrMissingConfig},
		{"bad environment", func(c *PlaidConfig) { c.Environment = "development" }, common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPlaidClient(t *testing.T) {
	client, err := NewPlaidClient(PlaidConfig{ClientID: "id", Secret: "s", Environment: "sandbox", AccessToken: "tok"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, client.windowDays)
}

func TestRecordFromPlaid(t *testing.T) {
	t.Run("outflow uses merchant name", func(t *testing.T) {
		var pt plaid.Transaction
		pt.SetTransactionId("txn-1")
		pt.SetDate("2024-02-03")
		pt.SetName("STARBUCKS STORE #123")
		pt.SetMerchantName("Starbucks")
		pt.SetAmount(5.5)

		r := recordFromPlaid(pt)
		assert.Equal(t, "txn-1", r.ID)
		assert.Equal(t, "2024-02-03", r.TransactionDate)
		assert.Equal(t, "Starbucks", r.Description)
		assert.InDelta(t, 5.5, r.Amount, 0.0001)
		assert.Equal(t, "withdrawal", r.TransactionType)
		assert.NotEmpty(t, r.Raw)
	})

	t.Run("inflow becomes deposit", func(t *testing.T) {
		var pt plaid.Transaction
		pt.SetName("PAYROLL ACME")
		pt.SetAmount(-2500)

		r := recordFromPlaid(pt)
		assert.Equal(t, "PAYROLL ACME", r.Description)
		assert.InDelta(t, 2500, r.Amount, 0.0001)
		assert.Equal(t, Deposit, r.TransactionType)
	})
}
