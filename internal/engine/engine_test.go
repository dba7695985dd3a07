package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/classification"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

func newTestEngine(ai Categorizer, cfg Config) *CategorizationEngine {
	return New(classification.NewDefaultEngine(), ai, cfg, nil)
}

func txn(description string, amount float64, txnType model.TransactionType) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: description,
		Amount:      amount,
		Type:        txnType,
		Source:      model.SourceCSV,
	}
}

func TestCategorizeBatch(t *testing.T) {
	ai := NewMockCategorizer(map[string]model.Categorization{
		"DELTA AIR 0062": {Category: model.CategoryTravel, Reason: "Airline", Status: model.StatusClassifiedByAI},
	})
	engine := newTestEngine(ai, Config{})

	preset := txn("Mystery Charge", 10, model.TypeDebit)
	preset.Category = "Gifts"
	preset.Reason = model.ReasonUserSpecified

	input := []model.Transaction{
		txn("WALMART SUPERCENTER", 85.43, model.TypeDebit),
		txn("DELTA AIR 0062", 412.80, model.TypeDebit),
		preset,
		txn("CVS Pharmacy", 28.76, model.TypeDebit),
	}

	out, summary := engine.CategorizeBatch(context.Background(), input)

	require.Len(t, out, len(input))
	assert.Equal(t, model.CategoryGroceries, out[0].Category)
	assert.Equal(t, model.ReasonRuleMatch, out[0].Reason)

	assert.Equal(t, model.CategoryTravel, out[1].Category)
	assert.Equal(t, "Airline", out[1].Reason)

	assert.Equal(t, "Gifts", out[2].Category, "existing category is kept")
	assert.Equal(t, model.ReasonUserSpecified, out[2].Reason)

	assert.Equal(t, model.CategoryUncategorized, out[3].Category)
	assert.Equal(t, model.ReasonFallback, out[3].Reason)

	for i := range input {
		assert.Equal(t, input[i].Description, out[i].Description, "order preserved")
	}
	assert.Empty(t, input[0].Category, "input slice is not mutated")

	assert.Equal(t, []string{"DELTA AIR 0062", "CVS Pharmacy"}, ai.Calls(), "AI only sees rule misses, in order")
	assert.Equal(t, BatchSummary{
		Total:          4,
		Skipped:        1,
		RuleMatched:    1,
		AICategorized:  1,
		Fallbacks:      1,
		ProcessingTime: summary.ProcessingTime,
	}, summary)
}

func TestCategorizeBatchNeverLeavesNullCategory(t *testing.T) {
	engine := newTestEngine(NewMockCategorizer(nil), Config{})

	input := []model.Transaction{
		txn("", 0, model.TypeDebit),
		txn("zzz", 1, model.TypeCredit),
		txn("Another unknown", 2, model.TypeDebit),
	}

	out, _ := engine.CategorizeBatch(context.Background(), input)
	for _, got := range out {
		assert.NotEmpty(t, got.Category)
		assert.NotEmpty(t, got.Reason)
	}
}

func TestCategorizeBatchPacesAICalls(t *testing.T) {
	engine := newTestEngine(NewMockCategorizer(nil), Config{CallDelay: 30 * time.Millisecond})

	input := []model.Transaction{
		txn("unknown one", 1, model.TypeDebit),
		txn("Rent Payment", 1200, model.TypeDebit),
		txn("unknown two", 1, model.TypeDebit),
		txn("unknown three", 1, model.TypeDebit),
	}

	start := time.Now()
	engine.CategorizeBatch(context.Background(), input)

	// Three AI calls means two gaps; rule hits do not wait.
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestCategorizeBatchProgress(t *testing.T) {
	engine := newTestEngine(NewMockCategorizer(nil), Config{})

	var seen []int
	engine.CategorizeBatch(context.Background(),
		[]model.Transaction{txn("Uber", 1, model.TypeDebit), txn("Lyft", 1, model.TypeDebit)},
		WithProgress(func(done, total int) {
			assert.Equal(t, 2, total)
			seen = append(seen, done)
		}))

	assert.Equal(t, []int{1, 2}, seen)
}

func TestCategorizeBatchEmpty(t *testing.T) {
	engine := newTestEngine(NewMockCategorizer(nil), Config{})

	out, summary := engine.CategorizeBatch(context.Background(), nil)
	assert.Empty(t, out)
	assert.Zero(t, summary.Total)
}

func TestCategorizeOne(t *testing.T) {
	ai := NewMockCategorizer(map[string]model.Categorization{
		"Tuition": {Category: model.CategoryEducation, Reason: "School", Status: model.StatusClassifiedByAI},
	})
	engine := newTestEngine(ai, Config{})

	rule := engine.CategorizeOne(context.Background(), txn("Netflix", 15.99, model.TypeDebit))
	assert.Equal(t, model.RuleCategorization(model.CategoryEntertainment), rule)

	viaAI := engine.CategorizeOne(context.Background(), txn("Tuition", 900, model.TypeDebit))
	assert.Equal(t, model.CategoryEducation, viaAI.Category)

	assert.Equal(t, []string{"Tuition"}, ai.Calls())
}
