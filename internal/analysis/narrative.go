package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/llm"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// NoTransactionsMessage accompanies a nil analysis.
const NoTransactionsMessage = "No transactions available for analysis"

const (
	narrativeTemperature = 0.4
	narrativeMaxTokens   = 1000
)

// Data is the aggregate handed to the model and echoed back to the caller.
type Data struct {
	Summary
	TransactionTimeframe string `json:"transactionTimeframe"`
	TotalTransactions    int    `json:"totalTransactions"`
}

// Narrative is the advice shown on the dashboard. Every field is always
// populated, from the model when it answered properly and from fixed text
// otherwise.
type Narrative struct {
	Overview            string   `json:"overview"`
	TopSpendingInsights string   `json:"topSpendingInsights"`
	FutureGuidance      string   `json:"futureGuidance"`
	BudgetSuggestion    string   `json:"budgetSuggestion"`
	Strengths           []string `json:"strengths"`
	Concerns            []string `json:"concerns"`
	Recommendations     []string `json:"recommendations"`
	Data                Data     `json:"data"`
}

var narrativeSchema = &llm.Schema{
	Type: llm.SchemaObject,
	Properties: map[string]*llm.Schema{
		"overview":            {Type: llm.SchemaString},
		"strengths":           {Type: llm.SchemaArray, Items: &llm.Schema{Type: llm.SchemaString}},
		"concerns":            {Type: llm.SchemaArray, Items: &llm.Schema{Type: llm.SchemaString}},
		"topSpendingInsights": {Type: llm.SchemaString},
		"recommendations":     {Type: llm.SchemaArray, Items: &llm.Schema{Type: llm.SchemaString}},
		"futureGuidance":      {Type: llm.SchemaString},
		"budgetSuggestion":    {Type: llm.SchemaString},
	},
}

// Analyst produces spending narratives, investment advice and goal plans.
type Analyst struct {
	client  llm.Client
	prompts *promptBuilder
	logger  *slog.Logger
}

// NewAnalyst creates an analyst. A nil client always yields the defaults.
func NewAnalyst(client llm.Client, logger *slog.Logger) *Analyst {
	return &Analyst{
		client:  client,
		prompts: mustPromptBuilder(),
		logger:  common.ComponentLogger(logger, "analyst"),
	}
}

// BuildData aggregates txns into the model input.
func BuildData(txns []model.Transaction) Data {
	summary := Aggregate(txns)
	return Data{
		Summary:              summary,
		TotalTransactions:    len(txns),
		TransactionTimeframe: fmt.Sprintf("%d months", summary.Months),
	}
}

// SpendingAnalysis returns nil when there is nothing to analyze. Model
// failures never surface; missing or mistyped fields take their defaults.
func (a *Analyst) SpendingAnalysis(ctx context.Context, txns []model.Transaction) *Narrative {
	if len(txns) == 0 {
		return nil
	}

	data := BuildData(txns)
	narrative := defaultNarrative(data)

	obj, err := a.generate(ctx, spendingGeneration, data)
	if err != nil {
		a.logger.Warn("Spending analysis failed, using defaults", "error", err)
		return narrative
	}

	if s, ok := llm.StringField(obj, "overview"); ok {
		narrative.Overview = s
	}
	if s, ok := llm.StringField(obj, "topSpendingInsights"); ok {
		narrative.TopSpendingInsights = s
	}
	if s, ok := llm.StringField(obj, "futureGuidance"); ok {
		narrative.FutureGuidance = s
	}
	if s, ok := llm.StringField(obj, "budgetSuggestion"); ok {
		narrative.BudgetSuggestion = s
	}
	if list, ok := llm.StringSliceField(obj, "strengths"); ok {
		narrative.Strengths = list
	}
	if list, ok := llm.StringSliceField(obj, "concerns"); ok {
		narrative.Concerns = list
	}
	if list, ok := llm.StringSliceField(obj, "recommendations"); ok {
		narrative.Recommendations = list
	}

	return narrative
}

// generation is one kind of model call the analyst makes.
type generation struct {
	schema      *llm.Schema
	template    string
	temperature float64
	maxTokens   int
}

var spendingGeneration = generation{
	schema:      narrativeSchema,
	template:    spendingPromptTemplate,
	temperature: narrativeTemperature,
	maxTokens:   narrativeMaxTokens,
}

func (a *Analyst) generate(ctx context.Context, gen generation, data any) (map[string]any, error) {
	if a.client == nil {
		return nil, fmt.Errorf("%w: llm client", common.ErrMissingConfig)
	}

	payload, err := indentJSON(data)
	if err != nil {
		return nil, err
	}
	prompt, err := a.prompts.render(gen.template, struct{ Data string }{payload})
	if err != nil {
		return nil, err
	}

	text, err := a.client.GenerateJSON(ctx, llm.Request{
		Prompt:      prompt,
		Schema:      gen.schema,
		Temperature: gen.temperature,
		MaxTokens:   gen.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	return llm.DecodeObject(text)
}

func defaultNarrative(data Data) *Narrative {
	topCategory, topAmount := "Unknown", 0.0
	if len(data.TopCategories) > 0 {
		topCategory = data.TopCategories[0].Category
		topAmount = data.TopCategories[0].Amount
	}

	return &Narrative{
		Overview: fmt.Sprintf("You have %d transactions with a net balance of $%s.",
			data.TotalTransactions, money(data.NetBalance)),
		Strengths: []string{
			"Regular transaction tracking",
			"Diverse spending categories",
		},
		Concerns: []string{
			"Consider reviewing spending patterns",
			"Monitor monthly expenses",
		},
		TopSpendingInsights: fmt.Sprintf("Your top spending category is %s at $%s.",
			topCategory, money(topAmount)),
		Recommendations: []string{
			"Track spending in high-expense categories",
			"Set monthly budgets for each category",
			"Consider automating savings",
			"Review and optimize recurring expenses",
		},
		FutureGuidance: "Focus on maintaining a positive balance while building emergency savings.",
		BudgetSuggestion: fmt.Sprintf("Based on your average monthly spending of $%s, consider allocating funds across categories.",
			money(data.AverageMonthlySpending)),
		Data: data,
	}
}

// money formats an already-rounded amount without trailing zeros.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
