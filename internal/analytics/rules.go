package analytics

import (
	"github.com/moneymaven/insights/internal/domain"
)

// Rule maps a category to the keywords that imply it. Keywords are matched
// as case-insensitive substrings of the raw description.
type Rule struct {
	Category domain.Category `json:"category"`
	Keywords []string        `json:"keywords"`
}

// Ruleset is an ordered rule table. Order is significant: the first rule
// with a keyword hit wins, so more specific categories must come first.
type Ruleset []Rule

// DefaultRuleset returns the compiled-in keyword table. It mirrors the
// production taxonomy and is used when no versioned rule table is
// configured. New merchants should be added to the stored table rather
// than here.
func DefaultRuleset() Ruleset {
	return Ruleset{
		{
			Category: domain.CategoryGroceries,
			Keywords: []string{
				"checkers", "spar", "superspar", "kwikspar", "pick n pay",
				"pnp", "shoprite", "makro", "woolworths", "freshx",
			},
		},
		{
			Category: domain.CategoryEatingOut,
			Keywords: []string{
				"kfc", "mcdonald", "steers", "roman", "pizza", "restaurant",
				"cafe", "sushi", "fish and chips", "bootlegger",
			},
		},
		{
			Category: domain.CategoryFuel,
			Keywords: []string{"engen", "shell", "bp", "caltex", "total", "sasols"},
		},
		{
			Category: domain.CategoryShopping,
			Keywords: []string{
				"takealot", "pep", "ackermans", "clicks", "dis-chem",
				"dischem", "toys r us", "mrph", "woolworths clothing",
			},
		},
		{
			Category: domain.CategoryEntertainment,
			Keywords: []string{"bowling", "arena", "cinema", "events", "shoot", "sports"},
		},
		{
			Category: domain.CategorySubscriptions,
			Keywords: []string{"netflix", "spotify", "afrihost"},
		},
		{
			Category: domain.CategoryHealth,
			Keywords: []string{
				"doctor", "drs", "practice", "clinic", "pharmacy", "hospice",
			},
		},
		{
			Category: domain.CategoryTransfers,
			Keywords: []string{"transfer", "savings pocket"},
		},
	}
}
