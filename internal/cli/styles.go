// Package cli renders command output for the terminal.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

// Palette. Adaptive colors keep output readable on light terminals.
var (
	accentColor   = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	positiveColor = lipgloss.AdaptiveColor{Light: "#138D75", Dark: "#4ECDC4"}
	cautionColor  = lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FFE66D"}
	negativeColor = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	noteColor     = lipgloss.AdaptiveColor{Light: "#2874A6", Dark: "#95E1D3"}
	mutedColor    = lipgloss.AdaptiveColor{Light: "#7F8C8D", Dark: "#666666"}
	borderColor   = lipgloss.Color("#333")
)

// Shared styles.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(positiveColor)
	WarningStyle = lipgloss.NewStyle().Foreground(cautionColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(noteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// Money columns.
	DebitStyle  = lipgloss.NewStyle().Foreground(negativeColor)
	CreditStyle = lipgloss.NewStyle().Foreground(positiveColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(borderColor)
	TableCellStyle = lipgloss.NewStyle()
)

// Icons.
const (
	SuccessIcon = "✓"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatAmount renders a signed amount: debits negative in red, credits green.
func FormatAmount(txn model.Transaction) string {
	if txn.IsDebit() {
		return DebitStyle.Render(fmt.Sprintf("-%.2f", txn.Amount))
	}
	return CreditStyle.Render(fmt.Sprintf("%.2f", txn.Amount))
}

// FormatConfidence shades a model confidence: confident answers green,
// borderline ones yellow, weak ones muted.
func FormatConfidence(confidence, threshold float64) string {
	text := fmt.Sprintf("%.2f", confidence)
	switch {
	case confidence > threshold:
		return SuccessStyle.Render(text)
	case confidence >= threshold/2:
		return WarningStyle.Render(text)
	default:
		return SubtleStyle.Render(text)
	}
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), "", content))
}
