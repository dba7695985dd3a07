package bank

import (
	"encoding/json"
	"time"
)

type mockEntry struct {
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
}

var mockEntries = []mockEntry{
	{"Walmart Grocery Store", "debit", 85.43},
	{"Salary Direct Deposit", "credit", 3500.00},
	{"Starbucks Coffee", "debit", 5.75},
	{"Uber Ride", "debit", 18.25},
	{"Electric Utility Bill", "debit", 125.00},
	{"Amazon Purchase", "debit", 67.99},
	{"Rent Payment", "debit", 1200.00},
	{"Netflix Subscription", "debit", 15.99},
	{"Gas Station Fill-up", "debit", 45.00},
	{"Kroger Supermarket", "debit", 72.18},
	{"Planet Fitness Gym", "debit", 29.99},
	{"McDonald's Restaurant", "debit", 12.45},
	{"Target Shopping", "debit", 94.32},
	{"Internet Bill Verizon", "debit", 79.99},
	{"Movie Theater AMC", "debit", 24.00},
	{"Insurance Premium", "debit", 156.00},
	{"Freelance Income", "credit", 850.00},
	{"Home Depot Hardware", "debit", 43.67},
	{"Chipotle Mexican Grill", "debit", 11.85},
	{"Shell Gas Station", "debit", 52.30},
	{"CVS Pharmacy", "debit", 28.76},
	{"Apple iCloud Storage", "debit", 2.99},
	{"Whole Foods Market", "debit", 89.45},
	{"Spotify Premium", "debit", 9.99},
	{"Bank Interest", "credit", 2.50},
	{"Best Buy Electronics", "debit", 199.99},
	{"Pizza Hut Delivery", "debit", 19.75},
	{"Water Utility Bill", "debit", 45.00},
	{"ATM Cash Withdrawal", "debit", 100.00},
	{"Cashback Reward", "credit", 25.00},
}

// MockRecordCount is the size of the full mock dataset.
var MockRecordCount = len(mockEntries)

// MockRecords returns the deterministic demo dataset: one record per day,
// the first dated one day before now. days caps the trailing window.
func MockRecords(now time.Time, days int) []Record {
	n := len(mockEntries)
	if days > 0 && days < n {
		n = days
	}

	records := make([]Record, 0, n)
	for i, entry := range mockEntries[:n] {
		kind := "withdrawal"
		if entry.Type == "credit" {
			kind = Deposit
		}

		raw, _ := json.Marshal(struct {
			Original mockEntry `json:"original"`
			Mock     bool      `json:"mock"`
		}{Original: entry, Mock: true})

		records = append(records, Record{
			TransactionDate: now.AddDate(0, 0, -(i + 1)).UTC().Format(time.RFC3339),
			Description:     entry.Description,
			Amount:          entry.Amount,
			TransactionType: kind,
			Raw:             raw,
		})
	}
	return records
}
