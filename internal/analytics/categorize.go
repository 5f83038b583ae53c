package analytics

import (
	"strings"

	"github.com/moneymaven/insights/internal/domain"
)

// Categorize assigns exactly one category to a provider transaction.
//
// Resolution order, first match wins:
//  1. CREDIT direction is always income, regardless of description.
//  2. ATM withdrawals are cash.
//  3. Fees/interest transaction types are fees.
//  4. The ordered keyword rule table.
//  5. uncategorized.
//
// Deterministic and total: the same input always yields the same category.
func Categorize(tx domain.ProviderTransaction, rules Ruleset) domain.Category {
	if tx.Type == domain.Credit {
		return domain.CategoryIncome
	}

	switch tx.TransactionType {
	case domain.TypeATMWithdrawals:
		return domain.CategoryCash
	case domain.TypeFeesAndInterest:
		return domain.CategoryFees
	}

	// Keywords are lower-cased here too: the stored rule table does not
	// guarantee casing the way the compiled-in table does.
	description := strings.ToLower(tx.Description)
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(description, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}

	return domain.CategoryUncategorized
}
