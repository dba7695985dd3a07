package classification

import "github.com/Veraticus/spice-dashboard/internal/model"

// DefaultRules returns the built-in keyword table. Order matters: a
// description such as "WALMART GAS" is Groceries because that rule is first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "groceries",
			Category: model.CategoryGroceries,
			Regex:    `GROC|SUPERMARKET|WALMART|KROGER|FOOD|MARKET`,
		},
		{
			Name:     "housing",
			Category: model.CategoryHousing,
			Regex:    `RENT|MORTG|APARTMENT`,
		},
		{
			Name:     "transportation",
			Category: model.CategoryTransportation,
			Regex:    `UBER|LYFT|CAB|TAXI|GAS|FUEL`,
		},
		{
			Name:     "dining",
			Category: model.CategoryFoodDining,
			Regex:    `COFFEE|STARBUCKS|CAFE|RESTAURANT|DINING`,
		},
		{
			Name:     "fitness",
			Category: model.CategoryHealthFitness,
			Regex:    `GYM|FITNESS|HEALTH`,
		},
		{
			Name:     "insurance",
			Category: model.CategoryInsurance,
			Regex:    `INSUR`,
		},
		{
			Name:     "income",
			Category: model.CategoryIncome,
			Regex:    `SALARY|PAYROLL|INCOME|DEPOSIT`,
		},
		{
			Name:     "utilities",
			Category: model.CategoryUtilities,
			Regex:    `UTIL|ELECTRIC|WATER|INTERNET`,
		},
		{
			Name:     "shopping",
			Category: model.CategoryShopping,
			Regex:    `SHOP|AMAZON|TARGET|STORE`,
		},
		{
			Name:     "entertainment",
			Category: model.CategoryEntertainment,
			Regex:    `ENTERTAIN|MOVIE|NETFLIX`,
		},
	}
}
