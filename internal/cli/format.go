package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-dashboard/internal/analysis"
	"github.com/Veraticus/spice-dashboard/internal/engine"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

const (
	maxDescriptionWidth = 32
	cellPadding         = 2
)

// FormatTransactions renders a transaction table.
func FormatTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return SubtleStyle.Render("No transactions")
	}

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, []string{
			txn.Date.Format("2006-01-02"),
			truncate(txn.Description, maxDescriptionWidth),
			FormatAmount(txn),
			txn.Category,
			string(txn.Source),
		})
	}

	return renderTable([]string{"Date", "Description", "Amount", "Category", "Source"}, rows)
}

// FormatReviews renders AI review results, marking rows whose category
// would change.
func FormatReviews(reviews []engine.Review) string {
	if len(reviews) == 0 {
		return SubtleStyle.Render("No transactions to review")
	}

	rows := make([][]string, 0, len(reviews))
	changed := 0
	for _, r := range reviews {
		final := r.FinalCategory
		if final != r.Transaction.Category {
			changed++
			final = WarningStyle.Render(final)
		}
		rows = append(rows, []string{
			truncate(r.Transaction.Description, maxDescriptionWidth),
			r.Transaction.Category,
			r.AICategory,
			FormatConfidence(r.AIConfidence, engine.DefaultConfidenceThreshold),
			final,
		})
	}

	table := renderTable([]string{"Description", "Current", "AI", "Confidence", "Final"}, rows)
	return table + "\n\n" + FormatInfo(fmt.Sprintf("%d of %d categories would change", changed, len(reviews)))
}

// FormatNarrative renders a spending analysis.
func FormatNarrative(n *analysis.Narrative) string {
	if n == nil {
		return FormatWarning(analysis.NoTransactionsMessage)
	}

	var sections []string
	sections = append(sections, RenderBox(ChartIcon+" Spending Overview", formatTotals(n.Data)))
	sections = append(sections, section("Overview", n.Overview))
	sections = append(sections, bulletSection("Strengths", n.Strengths))
	sections = append(sections, bulletSection("Concerns", n.Concerns))
	sections = append(sections, section("Top Spending", n.TopSpendingInsights))
	sections = append(sections, bulletSection("Recommendations", n.Recommendations))
	sections = append(sections, section("Looking Ahead", n.FutureGuidance))
	sections = append(sections, section("Budget", n.BudgetSuggestion))

	return strings.Join(sections, "\n\n")
}

func formatTotals(data analysis.Data) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Transactions: %d over %s\n", data.TotalTransactions, data.TransactionTimeframe)
	fmt.Fprintf(&sb, "Income:       $%.2f\n", data.TotalIncome)
	fmt.Fprintf(&sb, "Expenses:     $%.2f\n", data.TotalExpenses)
	fmt.Fprintf(&sb, "Net:          $%.2f\n", data.NetBalance)
	fmt.Fprintf(&sb, "Monthly avg:  $%.2f", data.AverageMonthlySpending)

	if len(data.TopCategories) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(BoldStyle.Render("Top categories"))
		for _, c := range data.TopCategories {
			fmt.Fprintf(&sb, "\n  %-20s $%.2f", c.Category, c.Amount)
		}
	}

	if len(data.MonthlyTotals) > 0 {
		months := make([]string, 0, len(data.MonthlyTotals))
		for m := range data.MonthlyTotals {
			months = append(months, m)
		}
		sort.Strings(months)

		sb.WriteString("\n\n")
		sb.WriteString(BoldStyle.Render("By month"))
		for _, m := range months {
			fmt.Fprintf(&sb, "\n  %-20s $%.2f", m, data.MonthlyTotals[m])
		}
	}

	return sb.String()
}

func section(title, body string) string {
	return BoldStyle.Render(title) + "\n" + body
}

func bulletSection(title string, items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "  • "+item)
	}
	return BoldStyle.Render(title) + "\n" + strings.Join(lines, "\n")
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = style.Width(widths[i] + cellPadding).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}

	lines := []string{renderRow(headers, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, TableCellStyle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
