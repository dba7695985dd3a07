package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/service"
)

// NessieConfig configures the bank-demo API client.
type NessieConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAccounts int
}

// NessieClient reads accounts and their transactions from a Nessie-style API.
type NessieClient struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	apiKey      string
	retryOpts   service.RetryOptions
	maxAccounts int
}

type nessieAccount struct {
	ID       string `json:"_id"`
	Nickname string `json:"nickname"`
}

// NewNessieClient creates a client. An empty API key is ErrNoAPIKey.
func NewNessieClient(cfg NessieConfig, logger *slog.Logger) (*NessieClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: bank base URL", common.ErrMissingConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxAccounts <= 0 {
		cfg.MaxAccounts = 2
	}

	return &NessieClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      common.ComponentLogger(logger, "nessie"),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxAccounts: cfg.MaxAccounts,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchRecords returns transactions for the first MaxAccounts accounts.
// A failing account is logged and skipped; only a failed account listing
// is an error.
func (c *NessieClient) FetchRecords(ctx context.Context) ([]Record, error) {
	var accounts []nessieAccount
	if err := c.getJSON(ctx, "/accounts", func(body []byte) error {
		return json.Unmarshal(body, &accounts)
	}); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) > c.maxAccounts {
		accounts = accounts[:c.maxAccounts]
	}

	var records []Record
	for _, account := range accounts {
		var accountRecords []Record
		err := c.getJSON(ctx, "/accounts/"+url.PathEscape(account.ID)+"/transactions", func(body []byte) error {
			var decodeErr error
			accountRecords, decodeErr = decodeRecords(body)
			return decodeErr
		})
		if err != nil {
			c.logger.Warn("Skipping account after fetch failure",
				"account_id", account.ID,
				"error", err)
			continue
		}
		records = append(records, accountRecords...)
	}

	c.logger.Info("Fetched bank transactions",
		"accounts", len(accounts),
		"count", len(records))

	return records, nil
}

func (c *NessieClient) getJSON(ctx context.Context, path string, decode func([]byte) error) error {
	endpoint := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return common.RateLimited(fmt.Errorf("bank API error (status %d)", resp.StatusCode), retryAfter(resp.Header))
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("bank API error (status %d)", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return common.Permanent(fmt.Errorf("bank API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}

		if err := decode(body); err != nil {
			return common.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	}, c.retryOpts)
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
