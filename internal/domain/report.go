package domain

// Summary holds the headline totals for a batch. All values are rounded to
// two decimals at construction time.
type Summary struct {
	TotalSpent  float64 `json:"totalSpent"`
	TotalIncome float64 `json:"totalIncome"`
	Net         float64 `json:"net"`
}

// MerchantTotal is one entry in the ranked merchant spend list.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// MonthlySummary breaks a single month's spend down by category.
type MonthlySummary struct {
	TotalSpent float64              `json:"totalSpent"`
	ByCategory map[Category]float64 `json:"byCategory"`
}

// RecurringMerchant is a merchant seen at or above the configured
// occurrence threshold within the batch.
type RecurringMerchant struct {
	Merchant string `json:"merchant"`
	Count    int    `json:"count"`
}

// AggregateReport is the derived, read-only snapshot of a batch. It is
// built fresh per call and never mutated after construction.
type AggregateReport struct {
	Summary            Summary                   `json:"summary"`
	ByCategory         map[Category]float64      `json:"byCategory"`
	ByMerchant         []MerchantTotal           `json:"byMerchant"`
	Monthly            map[string]MonthlySummary `json:"monthly"`
	RecurringMerchants []RecurringMerchant       `json:"recurringMerchants"`
}

// CategoryShare is one slice of the dashboard category breakdown. Percent
// values are integers that always sum to 100 across the slice.
type CategoryShare struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Amount   float64  `json:"amount"`
	Percent  int      `json:"percent"`
}
