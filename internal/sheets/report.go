package sheets

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-dashboard/internal/analysis"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// Tab names in an exported spreadsheet.
const (
	TransactionsTab = "Transactions"
	SummaryTab      = "Summary"
)

// Tab is one sheet's worth of cell values. The first row is the header.
type Tab struct {
	Title  string
	Values [][]any
}

// Report is everything an export writes.
type Report struct {
	Title string
	Tabs  []Tab
}

var transactionHeader = []any{"Date", "Description", "Type", "Amount", "Category", "Reason", "Source"}

// BuildReport lays out txns and their summary as spreadsheet tabs.
// Debit amounts are written negative so a column sum is the net flow.
func BuildReport(userID string, txns []model.Transaction) Report {
	summary := analysis.Aggregate(txns)

	rows := make([][]any, 0, len(txns)+1)
	rows = append(rows, transactionHeader)
	for _, txn := range txns {
		amount := decimal.NewFromFloat(txn.Amount).Round(2)
		if txn.Type == model.TypeDebit {
			amount = amount.Neg()
		}
		rows = append(rows, []any{
			txn.Date.UTC().Format("2006-01-02"),
			txn.Description,
			string(txn.Type),
			amount.InexactFloat64(),
			txn.Category,
			txn.Reason,
			string(txn.Source),
		})
	}

	return Report{
		Title: fmt.Sprintf("Spending for %s", userID),
		Tabs: []Tab{
			{Title: TransactionsTab, Values: rows},
			{Title: SummaryTab, Values: summaryRows(summary)},
		},
	}
}

func summaryRows(summary analysis.Summary) [][]any {
	rows := [][]any{
		{"Metric", "Amount"},
		{"Total income", summary.TotalIncome},
		{"Total expenses", summary.TotalExpenses},
		{"Net balance", summary.NetBalance},
		{"Average monthly spending", summary.AverageMonthlySpending},
		{},
		{"Category", "Spent"},
	}
	for _, top := range sortedTotals(summary.CategoryTotals) {
		rows = append(rows, []any{top.Category, top.Amount})
	}

	rows = append(rows, []any{}, []any{"Month", "Spent"})
	months := make([]string, 0, len(summary.MonthlyTotals))
	for month := range summary.MonthlyTotals {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		rows = append(rows, []any{month, summary.MonthlyTotals[month]})
	}
	return rows
}

// sortedTotals orders categories by amount, largest first, then by name.
func sortedTotals(totals map[string]float64) []analysis.CategoryAmount {
	out := make([]analysis.CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		out = append(out, analysis.CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}
