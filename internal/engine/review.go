package engine

import (
	"context"

	"github.com/Veraticus/spice-dashboard/internal/llm"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// Failed AI reviews report this confidence so they never override.
const failedReviewConfidence = 0.1

// Review pairs a stored transaction with a fresh AI opinion.
type Review struct {
	Transaction   model.Transaction `json:"transaction"`
	AICategory    string            `json:"aiCategory"`
	AIReason      string            `json:"aiReason"`
	FinalCategory string            `json:"finalCategory"`
	AIConfidence  float64           `json:"aiConfidence"`
}

// ReviewBatch asks the AI about every transaction and keeps the existing
// category unless the AI is more confident than the threshold. Nothing is
// mutated; callers decide what to persist.
func (e *CategorizationEngine) ReviewBatch(ctx context.Context, txns []model.Transaction, opts ...BatchOption) []Review {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	pacer := llm.NewPacer(e.callDelay)
	reviews := make([]Review, 0, len(txns))

	for i, txn := range txns {
		if err := pacer.Wait(ctx); err != nil {
			e.logger.Debug("Pacing interrupted", "error", err)
		}

		result := e.ai.Categorize(ctx, txn.Description, txn.Amount, txn.Type)
		confidence := result.Confidence
		if result.IsFallback() {
			confidence = failedReviewConfidence
		}

		reviews = append(reviews, Review{
			Transaction:   txn,
			AICategory:    result.Category,
			AIReason:      result.Reason,
			AIConfidence:  confidence,
			FinalCategory: e.finalCategory(txn, result, confidence),
		})

		if o.progress != nil {
			o.progress(i+1, len(txns))
		}
	}

	return reviews
}

func (e *CategorizationEngine) finalCategory(txn model.Transaction, result model.Categorization, confidence float64) string {
	if !txn.IsCategorized() {
		return result.Category
	}
	if result.HasConfidence && !result.IsFallback() && confidence > e.threshold {
		return result.Category
	}
	return txn.Category
}
