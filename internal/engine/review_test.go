package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

func TestReviewBatch(t *testing.T) {
	ai := NewMockCategorizer(map[string]model.Categorization{
		"confident": {
			Category: model.CategoryTravel, Reason: "Flight", Status: model.StatusClassifiedByAI,
			Confidence: 0.9, HasConfidence: true,
		},
		"threshold": {
			Category: model.CategoryTravel, Reason: "Maybe", Status: model.StatusClassifiedByAI,
			Confidence: 0.7, HasConfidence: true,
		},
		"silent": {
			Category: model.CategoryTravel, Reason: "No score", Status: model.StatusClassifiedByAI,
		},
		"fresh": {
			Category: model.CategoryEducation, Reason: "Books", Status: model.StatusClassifiedByAI,
			Confidence: 0.2, HasConfidence: true,
		},
	})
	engine := newTestEngine(ai, Config{})

	categorized := func(description string) model.Transaction {
		t := txn(description, 10, model.TypeDebit)
		t.Category = model.CategoryShopping
		return t
	}

	input := []model.Transaction{
		categorized("confident"),
		categorized("threshold"),
		categorized("silent"),
		txn("fresh", 10, model.TypeDebit),
		categorized("broken"),
	}

	reviews := engine.ReviewBatch(context.Background(), input)
	require.Len(t, reviews, len(input))

	assert.Equal(t, model.CategoryTravel, reviews[0].FinalCategory, "confident AI overrides")
	assert.InDelta(t, 0.9, reviews[0].AIConfidence, 0.0001)

	assert.Equal(t, model.CategoryShopping, reviews[1].FinalCategory, "confidence at threshold keeps existing")
	assert.Equal(t, model.CategoryTravel, reviews[1].AICategory)

	assert.Equal(t, model.CategoryShopping, reviews[2].FinalCategory, "no confidence keeps existing")

	assert.Equal(t, model.CategoryEducation, reviews[3].FinalCategory, "uncategorized takes the AI answer")

	assert.Equal(t, model.CategoryShopping, reviews[4].FinalCategory)
	assert.Equal(t, model.CategoryUncategorized, reviews[4].AICategory)
	assert.Equal(t, model.ReasonFallback, reviews[4].AIReason)
	assert.InDelta(t, 0.1, reviews[4].AIConfidence, 0.0001)

	assert.Equal(t, model.CategoryShopping, input[0].Category, "input untouched")
	assert.Len(t, ai.Calls(), 5, "every transaction is reviewed, rules are not consulted")
}

func TestReviewBatchCustomThreshold(t *testing.T) {
	ai := NewMockCategorizer(map[string]model.Categorization{
		"x": {Category: model.CategoryTravel, Status: model.StatusClassifiedByAI, Confidence: 0.6, HasConfidence: true},
	})
	engine := newTestEngine(ai, Config{ConfidenceThreshold: 0.5})

	in := txn("x", 1, model.TypeDebit)
	in.Category = model.CategoryShopping

	reviews := engine.ReviewBatch(context.Background(), []model.Transaction{in})
	require.Len(t, reviews, 1)
	assert.Equal(t, model.CategoryTravel, reviews[0].FinalCategory)
}
