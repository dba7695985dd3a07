// Package bank acquires raw transaction records from external providers.
package bank

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoAPIKey is returned when a provider has no credentials configured.
var ErrNoAPIKey = errors.New("bank API key is not configured")

// Deposit is the provider transaction kind that maps to a credit.
const Deposit = "deposit"

// Record is a provider transaction in the bank-API shape. Raw keeps the
// payload exactly as received.
type Record struct {
	Amount          any             `json:"amount"`
	Raw             json.RawMessage `json:"-"`
	ID              string          `json:"_id"`
	TransactionDate string          `json:"transaction_date"`
	PurchaseDate    string          `json:"purchase_date"`
	Description     string          `json:"description"`
	Payee           string          `json:"payee"`
	TransactionType string          `json:"transaction_type"`
}

// Fetcher defines the contract for fetching transaction data.
type Fetcher interface {
	FetchRecords(ctx context.Context) ([]Record, error)
}

// decodeRecords decodes a JSON array, keeping each element's raw bytes.
func decodeRecords(data []byte) ([]Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var r Record
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, err
		}
		r.Raw = item
		records = append(records, r)
	}
	return records, nil
}
