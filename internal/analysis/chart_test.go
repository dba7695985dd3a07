package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

func TestSummarizeForChart(t *testing.T) {
	txns := append(sampleTransactions(), txnOn(feb.AddDate(0, 0, 3), model.TypeDebit, 7, ""))

	got := SummarizeForChart(txns)

	assert.Equal(t, 5, got.TotalTransactions)
	assert.Equal(t, 1, got.PositiveTransactions)
	assert.Equal(t, 4, got.NegativeTransactions)
	assert.InDelta(t, 677, got.TotalAmount, 0.001)
	assert.InDelta(t, 135.4, got.AverageAmount, 0.001)
	assert.Equal(t, map[string]float64{
		model.CategoryGroceries:  120,
		model.CategoryFoodDining: 50,
		model.CategoryIncome:     500,
		"Other":                  7,
	}, got.Categories)
	require.NotNil(t, got.DateRange.Start)
	require.NotNil(t, got.DateRange.End)
	assert.True(t, got.DateRange.Start.Equal(jan))
	assert.True(t, got.DateRange.End.Equal(feb.AddDate(0, 0, 3)))
	assert.Equal(t, model.CategoryIncome, got.TopCategories[0].Category)
}

func TestSummarizeForChart_Empty(t *testing.T) {
	got := SummarizeForChart(nil)
	assert.Zero(t, got.AverageAmount)
	assert.Nil(t, got.DateRange.Start)
	assert.Empty(t, got.TopCategories)
}

func TestRecommend_Default(t *testing.T) {
	tests := []struct {
		recommender *ChartRecommender
		name        string
	}{
		{name: "model error", recommender: NewChartRecommender(failWith(errors.New("boom")), nil)},
		{name: "no client", recommender: NewChartRecommender(nil, nil)},
		{name: "unknown chart type", recommender: NewChartRecommender(replyWith(
			`{"recommendedChart": "radar", "chartConfig": {}, "explanation": "x"}`), nil)},
		{name: "config not an object", recommender: NewChartRecommender(replyWith(
			`{"recommendedChart": "bar", "chartConfig": [], "explanation": "x"}`), nil)},
		{name: "missing explanation", recommender: NewChartRecommender(replyWith(
			`{"recommendedChart": "bar", "chartConfig": {}}`), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.recommender.Recommend(context.Background(), sampleTransactions())

			assert.Equal(t, ChartPie, got.RecommendedChart)
			assert.Equal(t, "value", got.ChartConfig["dataKey"])
			assert.Equal(t, "name", got.ChartConfig["nameKey"])
			assert.Equal(t, DefaultChartColors, got.ChartConfig["colors"])
			assert.Equal(t, []ChartDatum{
				{Name: model.CategoryIncome, Value: 500},
				{Name: model.CategoryGroceries, Value: 120},
				{Name: model.CategoryFoodDining, Value: 50},
			}, got.ChartConfig["data"])
			assert.Contains(t, got.Explanation, "A pie chart is recommended")
			assert.Len(t, got.Insights, 2)
		})
	}
}

func TestRecommend_ModelReply(t *testing.T) {
	client := replyWith(`{
		"recommendedChart": "Line",
		"chartConfig": {"xKey": "month", "yKey": "amount"},
		"explanation": "Spending changes over time."
	}`)
	recommender := NewChartRecommender(client, nil)

	got := recommender.Recommend(context.Background(), sampleTransactions())

	assert.Equal(t, ChartLine, got.RecommendedChart)
	assert.Equal(t, map[string]any{"xKey": "month", "yKey": "amount"}, got.ChartConfig)
	assert.Equal(t, "Spending changes over time.", got.Explanation)
	assert.Equal(t, []string{}, got.Insights)

	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].Prompt, "- scatter (for correlations)")
	assert.Contains(t, client.requests[0].Prompt, "Data Type: transactions")
	assert.Equal(t, []string{"recommendedChart", "chartConfig", "explanation"}, client.requests[0].Schema.Required)
}

func TestDefaultChartRecommendation_CapsAtFive(t *testing.T) {
	var txns []model.Transaction
	for i, category := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		txns = append(txns, txnOn(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), model.TypeDebit, float64(i+1), category))
	}

	got := DefaultChartRecommendation(SummarizeForChart(txns))
	data, ok := got.ChartConfig["data"].([]ChartDatum)
	require.True(t, ok)
	require.Len(t, data, 5)
	assert.Equal(t, "g", data[0].Name)
}
