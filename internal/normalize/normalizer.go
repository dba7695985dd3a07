// Package normalize converts bank-API records, CSV rows and manual entries
// into canonical transactions. Normalized transactions carry no category.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-dashboard/internal/bank"
	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// PlaceholderDescription replaces a missing description.
const PlaceholderDescription = "Transaction"

// MissingManualFields is the validation message for incomplete manual entries.
const MissingManualFields = "Date, description, amount, and type are required"

// Row is one CSV-parsed record keyed by column header.
type Row map[string]any

// ManualEntry is a single transaction typed in by the user.
type ManualEntry struct {
	Amount      any    `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

// Normalizer maps external shapes onto model.Transaction.
type Normalizer struct {
	now func() time.Time
}

// New creates a normalizer using the wall clock for missing dates.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a normalizer with a fixed clock.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// FromBank normalizes bank-API records.
func (n *Normalizer) FromBank(records []bank.Record) []model.Transaction {
	out := make([]model.Transaction, 0, len(records))
	for _, r := range records {
		date, ok := parseDate(firstNonEmpty(r.TransactionDate, r.PurchaseDate))
		if !ok {
			date = n.now()
		}

		txnType := model.TypeDebit
		if strings.EqualFold(strings.TrimSpace(r.TransactionType), bank.Deposit) {
			txnType = model.TypeCredit
		}

		raw := r.Raw
		if len(raw) == 0 {
			raw, _ = json.Marshal(r)
		}

		out = append(out, model.Transaction{
			Date:        date,
			Description: description(firstNonEmpty(r.Description, r.Payee)),
			Amount:      coerceAmount(r.Amount),
			Type:        txnType,
			Source:      model.SourceBank,
			Raw:         raw,
		})
	}
	return out
}

// FromRows normalizes CSV rows. Header lookup ignores case.
func (n *Normalizer) FromRows(rows []Row) []model.Transaction {
	out := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		fields := lowerKeys(row)

		date, ok := parseDate(lookup(fields, "date", "transaction_date"))
		if !ok {
			date = n.now()
		}

		raw, err := json.Marshal(row)
		if err != nil {
			raw = nil
		}

		out = append(out, model.Transaction{
			Date:        date,
			Description: description(asString(lookup(fields, "description", "desc", "merchant"))),
			Amount:      coerceAmount(lookup(fields, "amount")),
			Type:        model.ParseTransactionType(asString(lookup(fields, "type"))),
			Source:      model.SourceCSV,
			Raw:         raw,
		})
	}
	return out
}

// FromManual validates and normalizes a manual entry. A supplied category is
// applied with the fixed user reason.
func (n *Normalizer) FromManual(entry ManualEntry) (model.Transaction, error) {
	desc := strings.TrimSpace(entry.Description)
	if strings.TrimSpace(entry.Date) == "" || desc == "" || strings.TrimSpace(entry.Type) == "" || isBlank(entry.Amount) {
		return model.Transaction{}, common.NewValidationError(MissingManualFields)
	}

	date, ok := parseDate(entry.Date)
	if !ok {
		return model.Transaction{}, common.NewValidationError(fmt.Sprintf("Invalid date: %s", entry.Date))
	}

	raw, err := json.Marshal(map[string]any{
		"manual":    true,
		"userInput": entry,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to encode manual entry: %w", err)
	}

	txn := model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      coerceAmount(entry.Amount),
		Type:        model.ParseTransactionType(entry.Type),
		Source:      model.SourceManual,
		Raw:         raw,
	}

	if category := strings.TrimSpace(entry.Category); category != "" {
		if canonical, known := model.CanonicalCategory(category); known {
			category = canonical
		}
		txn.Apply(model.UserCategorization(category))
	}

	return txn, nil
}

// coerceAmount turns a JSON number or numeric string into a non-negative
// amount rounded to cents. Anything unparseable is 0.
func coerceAmount(v any) float64 {
	var d decimal.Decimal

	switch val := v.(type) {
	case float64:
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		parsed, err := decimal.NewFromString(val.String())
		if err != nil {
			return 0
		}
		d = parsed
	case decimal.Decimal:
		d = val
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(val))
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return 0
		}
		d = parsed
	default:
		return 0
	}

	return d.Abs().Round(2).InexactFloat64()
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// parseDate accepts a time.Time or a string in a common layout. Layouts
// without a zone are read as UTC.
func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func description(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlaceholderDescription
	}
	return s
}

func lowerKeys(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := out[key]; !exists || isBlank(out[key]) {
			out[key] = v
		}
	}
	return out
}

// lookup returns the first non-blank value among keys.
func lookup(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
