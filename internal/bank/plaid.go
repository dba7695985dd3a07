package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/service"
)

// PlaidConfig holds Plaid API configuration.
type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
	WindowDays  int
}

// Validate ensures all required fields are present.
func (c PlaidConfig) Validate() error {
	if c.ClientID == "" || c.Secret == "" {
		return ErrNoAPIKey
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token", common.ErrMissingConfig)
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// PlaidClient fetches a trailing window of transactions from Plaid.
type PlaidClient struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	now         func() time.Time
	accessToken string
	retryOpts   service.RetryOptions
	windowDays  int
}

// NewPlaidClient creates a Plaid-backed Fetcher.
func NewPlaidClient(cfg PlaidConfig, logger *slog.Logger) (*PlaidClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &PlaidClient{
		client:      plaid.NewAPIClient(configuration),
		logger:      common.ComponentLogger(logger, "plaid"),
		now:         time.Now,
		accessToken: cfg.AccessToken,
		windowDays:  cfg.WindowDays,
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchRecords pages through TransactionsGet for the configured window.
func (c *PlaidClient) FetchRecords(ctx context.Context) ([]Record, error) {
	end := c.now()
	start := end.AddDate(0, 0, -c.windowDays)

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500)

	for {
		var page []plaid.Transaction

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				start.Format("2006-01-02"),
				end.Format("2006-01-02"),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				if plaidErr, convErr := plaid.ToPlaidError(err); convErr == nil {
					if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
						c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
						return common.RateLimited(err, 0)
					}
					return common.Permanent(fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage))
				}
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			page = resp.GetTransactions()
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	records := make([]Record, 0, len(all))
	for _, pt := range all {
		records = append(records, recordFromPlaid(pt))
	}

	c.logger.Info("Fetched Plaid transactions", "count", len(records))
	return records, nil
}

// recordFromPlaid maps a Plaid transaction into the bank-API record shape.
// Plaid reports outflows as positive amounts and inflows as negative.
func recordFromPlaid(pt plaid.Transaction) Record {
	description := pt.GetMerchantName()
	if strings.TrimSpace(description) == "" {
		description = pt.GetName()
	}

	kind := "withdrawal"
	if pt.GetAmount() < 0 {
		kind = Deposit
	}

	raw, err := json.Marshal(pt)
	if err != nil {
		raw = nil
	}

	return Record{
		ID:              pt.GetTransactionId(),
		TransactionDate: pt.GetDate(),
		Description:     description,
		Amount:          math.Abs(pt.GetAmount()),
		TransactionType: kind,
		Raw:             raw,
	}
}
