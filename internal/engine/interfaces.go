package engine

import (
	"context"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

// RuleClassifier maps a description to a category without network calls.
type RuleClassifier interface {
	Classify(description string) (string, bool)
}

// Categorizer is the AI fallback. It must never fail; failures are reported
// as a fallback Categorization.
type Categorizer interface {
	Categorize(ctx context.Context, description string, amount float64, txnType model.TransactionType) model.Categorization
}
