package domain

// Category is a single label classifying the purpose of a transaction.
// It is derived fresh on every projection, never stored on provider data.
type Category string

const (
	CategoryGroceries     Category = "groceries"
	CategoryEatingOut     Category = "eating_out"
	CategoryFuel          Category = "fuel"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategorySubscriptions Category = "subscriptions"
	CategoryHealth        Category = "health"
	CategoryTransfers     Category = "transfers"

	// Provider-driven overrides and the income marker.
	CategoryIncome Category = "income"
	CategoryCash   Category = "cash"
	CategoryFees   Category = "fees"

	CategoryUncategorized Category = "uncategorized"
)

// AllCategories lists every category the core can emit.
var AllCategories = []Category{
	CategoryGroceries,
	CategoryEatingOut,
	CategoryFuel,
	CategoryShopping,
	CategoryEntertainment,
	CategorySubscriptions,
	CategoryHealth,
	CategoryTransfers,
	CategoryIncome,
	CategoryCash,
	CategoryFees,
	CategoryUncategorized,
}
