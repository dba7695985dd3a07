// Package analysis turns stored transactions into spending numbers and asks
// the model to explain them.
package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

const topCategoryCount = 5

// CategoryAmount is one entry of a ranked category list.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Summary is the numeric spending aggregate. Every amount is rounded to
// two decimal places.
type Summary struct {
	CategoryTotals         map[string]float64 `json:"categoryTotals"`
	MonthlyTotals          map[string]float64 `json:"monthlyTotals"`
	TopCategories          []CategoryAmount   `json:"topSpendingCategories"`
	TotalIncome            float64            `json:"totalIncome"`
	TotalExpenses          float64            `json:"totalExpenses"`
	NetBalance             float64            `json:"netBalance"`
	AverageMonthlySpending float64            `json:"averageMonthlySpending"`
	Months                 int                `json:"-"`
}

// Aggregate sums income and expenses. Credits only count as income; debits
// feed the expense, category and month totals.
func Aggregate(txns []model.Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	byMonth := map[string]decimal.Decimal{}
	var order []string

	for _, txn := range txns {
		amount := decimal.NewFromFloat(txn.Amount)
		if !txn.IsDebit() {
			income = income.Add(amount)
			continue
		}

		expenses = expenses.Add(amount)

		category := txn.Category
		if category == "" {
			category = model.CategoryUncategorized
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = byCategory[category].Add(amount)

		month := txn.Month()
		byMonth[month] = byMonth[month].Add(amount)
	}

	months := max(len(byMonth), 1)

	summary := Summary{
		CategoryTotals:         roundAll(byCategory),
		MonthlyTotals:          roundAll(byMonth),
		TopCategories:          topCategories(order, byCategory, topCategoryCount),
		TotalIncome:            round2(income),
		TotalExpenses:          round2(expenses),
		NetBalance:             round2(income.Sub(expenses)),
		AverageMonthlySpending: round2(expenses.Div(decimal.NewFromInt(int64(months)))),
		Months:                 months,
	}
	return summary
}

// topCategories ranks by amount, keeping first-seen order among equal sums.
func topCategories(order []string, totals map[string]decimal.Decimal, n int) []CategoryAmount {
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]].GreaterThan(totals[ranked[j]])
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]CategoryAmount, 0, len(ranked))
	for _, category := range ranked {
		out = append(out, CategoryAmount{Category: category, Amount: round2(totals[category])})
	}
	return out
}

func roundAll(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round2(v)
	}
	return out
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
