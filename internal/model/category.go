package model

import "strings"

// Canonical category names.
const (
	CategoryGroceries      = "Groceries"
	CategoryHousing        = "Housing"
	CategoryTransportation = "Transportation"
	CategoryFoodDining     = "Food & Dining"
	CategoryHealthFitness  = "Health & Fitness"
	CategoryInsurance      = "Insurance"
	CategoryIncome         = "Income"
	CategoryUtilities      = "Utilities"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryTravel         = "Travel"
	CategoryEducation      = "Education"
	CategoryTransfers      = "Transfers"
	CategoryFees           = "Fees & Charges"
	CategoryInvestments    = "Investments"
	CategoryUncategorized  = "Uncategorized"
)

var canonicalCategories = []string{
	CategoryGroceries,
	CategoryHousing,
	CategoryTransportation,
	CategoryFoodDining,
	CategoryHealthFitness,
	CategoryInsurance,
	CategoryIncome,
	CategoryUtilities,
	CategoryShopping,
	CategoryEntertainment,
	CategoryTravel,
	CategoryEducation,
	CategoryTransfers,
	CategoryFees,
	CategoryInvestments,
	CategoryUncategorized,
}

// Categories returns the canonical category vocabulary in display order.
func Categories() []string {
	out := make([]string, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// CanonicalCategory resolves a free-form name to its canonical spelling.
// The match ignores case and surrounding whitespace.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range canonicalCategories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
