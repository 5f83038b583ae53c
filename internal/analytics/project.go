package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/moneymaven/insights/internal/domain"
)

// dateLayouts are the timestamp shapes the provider is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate parses a provider transaction date, accepting both date-only
// and datetime forms.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized transaction date %q", value)
}

// Project maps a raw provider batch into analytics transactions,
// order-preserving and one-to-one for every valid record. Structurally
// invalid records (missing identifier, missing description, unknown
// direction, unparseable date) are skipped rather than failing the batch;
// the second return value is the number of records dropped, for the caller
// to log.
func Project(raw []domain.ProviderTransaction, rules Ruleset) ([]domain.AnalyticsTransaction, int) {
	txs := make([]domain.AnalyticsTransaction, 0, len(raw))
	dropped := 0

	for _, tx := range raw {
		if tx.UUID == "" || tx.Description == "" || tx.TransactionDate == "" {
			dropped++
			continue
		}
		if tx.Type != domain.Debit && tx.Type != domain.Credit {
			dropped++
			continue
		}
		if _, err := parseDate(tx.TransactionDate); err != nil {
			dropped++
			continue
		}

		txs = append(txs, domain.AnalyticsTransaction{
			ID:              tx.UUID,
			AccountID:       tx.AccountID,
			Description:     tx.Description,
			Amount:          math.Abs(tx.Amount),
			Type:            tx.Type,
			Date:            tx.TransactionDate,
			Category:        Categorize(tx, rules),
			Merchant:        NormalizeMerchant(tx.Description),
			TransactionType: tx.TransactionType,
		})
	}

	return txs, dropped
}
