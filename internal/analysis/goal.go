package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-dashboard/internal/llm"
)

// Goal feasibility ratings.
const (
	FeasibilityAchieved = "achieved"
	FeasibilityOnTrack  = "on track"
	FeasibilityStretch  = "stretch"
	FeasibilityUnknown  = "unknown"
)

// DefaultGoalName labels a goal submitted without one.
const DefaultGoalName = "Savings goal"

const (
	defaultGoalMonths = 12
	goalTemperature   = 0.3
	goalMaxTokens     = 800
)

var feasibilities = []string{FeasibilityAchieved, FeasibilityOnTrack, FeasibilityStretch, FeasibilityUnknown}

// Form keys accepted for each goal input, in order of preference.
var (
	goalNameKeys   = []string{"goal", "goalName"}
	goalTargetKeys = []string{"goalAmount", "targetAmount"}
	goalSavedKeys  = []string{"currentSavings", "savings"}
	goalMonthKeys  = []string{"timeframeMonths", "months"}
	goalIncomeKeys = []string{"monthlyIncome", "income"}
	goalSpendKeys  = []string{"monthlyExpenses", "expenses"}
)

// GoalPlan is a numerical plan for reaching a savings goal. The amounts
// read from the form are never replaced by the model.
type GoalPlan struct {
	MonthlyCapacity      *float64 `json:"monthlyCapacity"`
	Goal                 string   `json:"goal"`
	Feasibility          string   `json:"feasibility"`
	Summary              string   `json:"summary"`
	Steps                []string `json:"steps"`
	TargetAmount         float64  `json:"targetAmount"`
	CurrentSavings       float64  `json:"currentSavings"`
	MonthlySavingsNeeded float64  `json:"monthlySavingsNeeded"`
	MonthsToGoal         int      `json:"monthsToGoal"`
}

var goalGeneration = generation{
	schema: &llm.Schema{
		Type: llm.SchemaObject,
		Properties: map[string]*llm.Schema{
			"monthlySavingsNeeded": {Type: llm.SchemaNumber},
			"monthsToGoal":         {Type: llm.SchemaNumber},
			"feasibility":          {Type: llm.SchemaString},
			"summary":              {Type: llm.SchemaString},
			"steps":                stringList,
		},
	},
	template:    goalPromptTemplate,
	temperature: goalTemperature,
	maxTokens:   goalMaxTokens,
}

// GoalAnalysis plans the goal described by form. Amounts may be numbers or
// numeric strings. Model failures never surface; missing or invalid fields
// keep the locally computed plan.
func (a *Analyst) GoalAnalysis(ctx context.Context, form map[string]any) GoalPlan {
	plan := estimateGoal(form)

	obj, err := a.generate(ctx, goalGeneration, struct {
		Form     map[string]any `json:"form"`
		Estimate GoalPlan       `json:"estimate"`
	}{form, plan})
	if err != nil {
		a.logger.Warn("Goal analysis failed, using defaults", "error", err)
		return plan
	}

	if v, ok := llm.NumberField(obj, "monthlySavingsNeeded"); ok && v >= 0 {
		plan.MonthlySavingsNeeded = round2(decimal.NewFromFloat(v))
	}
	if v, ok := llm.NumberField(obj, "monthsToGoal"); ok && v >= 0 && v == math.Trunc(v) {
		plan.MonthsToGoal = int(v)
	}
	if s, ok := llm.StringField(obj, "feasibility"); ok {
		if s = strings.ToLower(s); slices.Contains(feasibilities, s) {
			plan.Feasibility = s
		}
	}
	if s, ok := llm.StringField(obj, "summary"); ok {
		plan.Summary = s
	}
	setList(obj, "steps", &plan.Steps)

	return plan
}

// estimateGoal computes the plan without the model.
func estimateGoal(form map[string]any) GoalPlan {
	name := DefaultGoalName
	for _, key := range goalNameKeys {
		if s, ok := llm.StringField(form, key); ok {
			name = s
			break
		}
	}

	target, _ := formAmount(form, goalTargetKeys)
	saved, _ := formAmount(form, goalSavedKeys)
	months := defaultGoalMonths
	if m, ok := formAmount(form, goalMonthKeys); ok && m.IsPositive() {
		months = int(m.Ceil().IntPart())
	}

	plan := GoalPlan{
		Goal:           name,
		TargetAmount:   round2(target),
		CurrentSavings: round2(saved),
		Feasibility:    FeasibilityUnknown,
		MonthsToGoal:   months,
		Steps: []string{
			"Automate a monthly transfer to a dedicated savings account",
			"Review recurring expenses for money to redirect",
			"Revisit the plan every three months",
		},
	}

	remaining := target.Sub(saved)
	if !remaining.IsPositive() {
		plan.Feasibility = FeasibilityAchieved
		plan.MonthsToGoal = 0
		plan.Summary = fmt.Sprintf("You have already reached your goal of $%s.", money(plan.TargetAmount))
		return plan
	}

	needed := remaining.Div(decimal.NewFromInt(int64(months)))
	plan.MonthlySavingsNeeded = round2(needed)
	plan.Summary = fmt.Sprintf("Save $%s per month for %d months to reach $%s.",
		money(plan.MonthlySavingsNeeded), months, money(plan.TargetAmount))

	income, hasIncome := formAmount(form, goalIncomeKeys)
	expenses, hasExpenses := formAmount(form, goalSpendKeys)
	if !hasIncome || !hasExpenses {
		return plan
	}

	capacity := income.Sub(expenses)
	c := round2(capacity)
	plan.MonthlyCapacity = &c

	if capacity.IsPositive() && needed.LessThanOrEqual(capacity) {
		plan.Feasibility = FeasibilityOnTrack
		return plan
	}

	plan.Feasibility = FeasibilityStretch
	if capacity.IsPositive() {
		plan.MonthsToGoal = int(remaining.Div(capacity).Ceil().IntPart())
	}
	plan.Summary = fmt.Sprintf("Reaching $%s in %d months needs $%s per month, more than the $%s left over each month.",
		money(plan.TargetAmount), months, money(plan.MonthlySavingsNeeded), money(c))
	return plan
}

// formAmount reads the first key holding a number or a numeric string.
// Dollar signs and thousands separators are ignored.
func formAmount(form map[string]any, keys []string) (decimal.Decimal, bool) {
	for _, key := range keys {
		switch v := form[key].(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case string:
			clean := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(v), "$"), ",", "")
			if d, err := decimal.NewFromString(clean); err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}
