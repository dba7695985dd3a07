package model

import (
	"encoding/json"
	"strings"
	"time"
)

// TransactionType is the direction of money movement.
type TransactionType string

// Transaction type constants.
const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// ParseTransactionType maps free-form input onto a TransactionType.
// Anything other than "credit" is a debit.
func ParseTransactionType(s string) TransactionType {
	if strings.EqualFold(strings.TrimSpace(s), string(TypeCredit)) {
		return TypeCredit
	}
	return TypeDebit
}

// Source identifies how a transaction entered the system.
type Source string

// Source constants.
const (
	SourceBank   Source = "bank"
	SourceCSV    Source = "csv"
	SourceManual Source = "manual"
)

// Transaction is a single normalized financial record owned by a user.
type Transaction struct {
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Source      Source          `json:"source"`
	Category    string          `json:"category,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	Amount      float64         `json:"amount"`
}

// IsCategorized reports whether the transaction already carries a category.
func (t Transaction) IsCategorized() bool {
	return strings.TrimSpace(t.Category) != ""
}

// IsDebit reports whether money left the account.
func (t Transaction) IsDebit() bool {
	return t.Type != TypeCredit
}

// Month returns the UTC calendar month of the transaction as YYYY-MM.
func (t Transaction) Month() string {
	return t.Date.UTC().Format("2006-01")
}

// Apply copies a categorization result onto the transaction.
func (t *Transaction) Apply(c Categorization) {
	t.Category = c.Category
	t.Reason = c.Reason
}
