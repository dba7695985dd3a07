package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/llm"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// Chart types the dashboard can render.
const (
	ChartPie     = "pie"
	ChartBar     = "bar"
	ChartLine    = "line"
	ChartArea    = "area"
	ChartDonut   = "donut"
	ChartScatter = "scatter"
)

const (
	chartTemperature = 0.4
	chartMaxTokens   = 2048
	otherCategory    = "Other"
)

type chartType struct {
	Name string
	Use  string
}

var chartTypes = []chartType{
	{ChartPie, "for categorical breakdowns"},
	{ChartBar, "for comparisons"},
	{ChartLine, "for trends over time"},
	{ChartArea, "for cumulative trends"},
	{ChartDonut, "for proportional data"},
	{ChartScatter, "for correlations"},
}

// DefaultChartColors is the palette of the fallback pie chart.
var DefaultChartColors = []string{"#1E88E5", "#FF8F00", "#10B981", "#EF4444", "#6366F1"}

var chartSchema = &llm.Schema{
	Type: llm.SchemaObject,
	Properties: map[string]*llm.Schema{
		"recommendedChart": {Type: llm.SchemaString},
		"chartConfig":      {Type: llm.SchemaObject},
		"explanation":      {Type: llm.SchemaString},
		"insights":         {Type: llm.SchemaArray, Items: &llm.Schema{Type: llm.SchemaString}},
	},
	Required: []string{"recommendedChart", "chartConfig", "explanation"},
}

// ChartRecommendation tells the frontend what to draw.
type ChartRecommendation struct {
	ChartConfig      map[string]any `json:"chartConfig"`
	RecommendedChart string         `json:"recommendedChart"`
	Explanation      string         `json:"explanation"`
	Insights         []string       `json:"insights"`
}

// ChartDatum is one slice of the default pie chart.
type ChartDatum struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DateRange bounds the summarized transactions.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ChartSummary describes transactions by absolute amount, across both
// debits and credits.
type ChartSummary struct {
	Categories           map[string]float64 `json:"categories"`
	DateRange            DateRange          `json:"dateRange"`
	TopCategories        []CategoryAmount   `json:"topCategories"`
	TotalTransactions    int                `json:"totalTransactions"`
	TotalAmount          float64            `json:"totalAmount"`
	PositiveTransactions int                `json:"positiveTransactions"`
	NegativeTransactions int                `json:"negativeTransactions"`
	AverageAmount        float64            `json:"averageAmount"`
}

// SummarizeForChart builds the chart prompt input.
func SummarizeForChart(txns []model.Transaction) ChartSummary {
	totals := map[string]decimal.Decimal{}
	var order []string
	total := decimal.Zero
	summary := ChartSummary{TotalTransactions: len(txns)}

	for _, txn := range txns {
		category := txn.Category
		if category == "" {
			category = otherCategory
		}
		amount := decimal.NewFromFloat(txn.Amount).Abs()

		if _, seen := totals[category]; !seen {
			order = append(order, category)
		}
		totals[category] = totals[category].Add(amount)
		total = total.Add(amount)

		if txn.IsDebit() {
			summary.NegativeTransactions++
		} else {
			summary.PositiveTransactions++
		}

		date := txn.Date.UTC()
		if summary.DateRange.Start == nil || date.Before(*summary.DateRange.Start) {
			summary.DateRange.Start = &date
		}
		if summary.DateRange.End == nil || date.After(*summary.DateRange.End) {
			summary.DateRange.End = &date
		}
	}

	summary.Categories = roundAll(totals)
	summary.TotalAmount = round2(total)
	if len(txns) > 0 {
		summary.AverageAmount = round2(total.Div(decimal.NewFromInt(int64(len(txns)))))
	}
	summary.TopCategories = topCategories(order, totals, topCategoryCount)

	return summary
}

// ChartRecommender asks the model which chart suits the user's data.
type ChartRecommender struct {
	client  llm.Client
	prompts *promptBuilder
	logger  *slog.Logger
}

// NewChartRecommender creates a recommender. A nil client always yields the
// default pie chart.
func NewChartRecommender(client llm.Client, logger *slog.Logger) *ChartRecommender {
	return &ChartRecommender{
		client:  client,
		prompts: mustPromptBuilder(),
		logger:  common.ComponentLogger(logger, "charts"),
	}
}

// Recommend never fails; anything short of a complete reply yields the
// default recommendation.
func (r *ChartRecommender) Recommend(ctx context.Context, txns []model.Transaction) ChartRecommendation {
	summary := SummarizeForChart(txns)

	rec, err := r.generate(ctx, summary)
	if err != nil {
		r.logger.Warn("Chart recommendation failed, using default", "error", err)
		return DefaultChartRecommendation(summary)
	}
	return rec
}

func (r *ChartRecommender) generate(ctx context.Context, summary ChartSummary) (ChartRecommendation, error) {
	if r.client == nil {
		return ChartRecommendation{}, fmt.Errorf("%w: llm client", common.ErrMissingConfig)
	}

	payload, err := indentJSON(summary)
	if err != nil {
		return ChartRecommendation{}, err
	}
	prompt, err := r.prompts.render(chartPromptTemplate, map[string]any{
		"Data":       payload,
		"DataType":   "transactions",
		"ChartTypes": chartTypes,
	})
	if err != nil {
		return ChartRecommendation{}, err
	}

	text, err := r.client.GenerateJSON(ctx, llm.Request{
		Prompt:      prompt,
		Schema:      chartSchema,
		Temperature: chartTemperature,
		MaxTokens:   chartMaxTokens,
	})
	if err != nil {
		return ChartRecommendation{}, err
	}

	return parseChartRecommendation(text)
}

func parseChartRecommendation(text string) (ChartRecommendation, error) {
	obj, err := llm.DecodeObject(text)
	if err != nil {
		return ChartRecommendation{}, err
	}

	chart, ok := llm.StringField(obj, "recommendedChart")
	chart = strings.ToLower(chart)
	if !ok || !isChartType(chart) {
		return ChartRecommendation{}, fmt.Errorf("unknown chart type %q", chart)
	}
	config, ok := obj["chartConfig"].(map[string]any)
	if !ok {
		return ChartRecommendation{}, fmt.Errorf("chartConfig missing or not an object")
	}
	explanation, ok := llm.StringField(obj, "explanation")
	if !ok {
		return ChartRecommendation{}, fmt.Errorf("explanation missing")
	}
	insights, ok := llm.StringSliceField(obj, "insights")
	if !ok {
		insights = []string{}
	}

	return ChartRecommendation{
		RecommendedChart: chart,
		ChartConfig:      config,
		Explanation:      explanation,
		Insights:         insights,
	}, nil
}

func isChartType(name string) bool {
	return slices.ContainsFunc(chartTypes, func(t chartType) bool {
		return t.Name == name
	})
}

// DefaultChartRecommendation is a pie of the top five categories.
func DefaultChartRecommendation(summary ChartSummary) ChartRecommendation {
	data := make([]ChartDatum, 0, len(summary.TopCategories))
	for _, c := range summary.TopCategories {
		data = append(data, ChartDatum{Name: c.Category, Value: c.Amount})
	}

	return ChartRecommendation{
		RecommendedChart: ChartPie,
		ChartConfig: map[string]any{
			"data":    data,
			"dataKey": "value",
			"nameKey": "name",
			"colors":  slices.Clone(DefaultChartColors),
		},
		Explanation: "A pie chart is recommended to show the distribution of spending across different categories, making it easy to identify where most of your money is going.",
		Insights: []string{
			"This visualization helps identify your largest expense categories",
			"You can quickly see spending patterns and areas for potential savings",
		},
	}
}
