package analytics

import (
	"math"
	"sort"

	"github.com/moneymaven/insights/internal/domain"
)

// DefaultRecurringMinCount is the occurrence threshold for the recurring
// merchant list. Sandbox statements are short, so the default is low;
// production callers should raise it via AggregateOptions.
const DefaultRecurringMinCount = 3

// AggregateOptions tunes report construction.
type AggregateOptions struct {
	// RecurringMinCount is the minimum number of occurrences for a merchant
	// to be listed as recurring. Zero means DefaultRecurringMinCount.
	RecurringMinCount int
}

type merchantStat struct {
	count     int
	total     float64
	firstSeen int
}

// round2 rounds a monetary value to two decimal places. Used only at the
// output boundary; accumulation runs at full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate computes the full report for a projected batch in a single
// pass. Empty input yields a zero report with empty (non-nil) maps and
// lists.
func Aggregate(txs []domain.AnalyticsTransaction, opts AggregateOptions) domain.AggregateReport {
	minCount := opts.RecurringMinCount
	if minCount <= 0 {
		minCount = DefaultRecurringMinCount
	}

	var income, spent float64
	byCategory := make(map[domain.Category]float64)
	merchants := make(map[string]*merchantStat)
	merchantOrder := make([]string, 0)
	monthly := make(map[string]*struct {
		total      float64
		byCategory map[domain.Category]float64
	})

	for _, tx := range txs {
		if tx.Type == domain.Credit {
			income += tx.Amount
			continue
		}

		spent += tx.Amount
		byCategory[tx.Category] += tx.Amount

		stat, ok := merchants[tx.Merchant]
		if !ok {
			stat = &merchantStat{firstSeen: len(merchantOrder)}
			merchants[tx.Merchant] = stat
			merchantOrder = append(merchantOrder, tx.Merchant)
		}
		stat.count++
		stat.total += tx.Amount

		// Month key is the YYYY-MM prefix of the ISO date.
		month := tx.Date[:7]
		m, ok := monthly[month]
		if !ok {
			m = &struct {
				total      float64
				byCategory map[domain.Category]float64
			}{byCategory: make(map[domain.Category]float64)}
			monthly[month] = m
		}
		m.total += tx.Amount
		m.byCategory[tx.Category] += tx.Amount
	}

	roundedCategories := make(map[domain.Category]float64, len(byCategory))
	for cat, total := range byCategory {
		roundedCategories[cat] = round2(total)
	}

	byMerchant := make([]domain.MerchantTotal, 0, len(merchants))
	for _, merchant := range merchantOrder {
		stat := merchants[merchant]
		byMerchant = append(byMerchant, domain.MerchantTotal{
			Merchant: merchant,
			Count:    stat.count,
			Total:    round2(stat.total),
		})
	}
	// Descending by total; ties keep first-seen order because the input
	// slice is already in first-seen order and the sort is stable.
	sort.SliceStable(byMerchant, func(i, j int) bool {
		return byMerchant[i].Total > byMerchant[j].Total
	})

	monthlyOut := make(map[string]domain.MonthlySummary, len(monthly))
	for month, m := range monthly {
		cats := make(map[domain.Category]float64, len(m.byCategory))
		for cat, total := range m.byCategory {
			cats[cat] = round2(total)
		}
		monthlyOut[month] = domain.MonthlySummary{
			TotalSpent: round2(m.total),
			ByCategory: cats,
		}
	}

	recurring := make([]domain.RecurringMerchant, 0)
	for _, merchant := range merchantOrder {
		stat := merchants[merchant]
		if stat.count >= minCount {
			recurring = append(recurring, domain.RecurringMerchant{
				Merchant: merchant,
				Count:    stat.count,
			})
		}
	}
	sort.SliceStable(recurring, func(i, j int) bool {
		return recurring[i].Count > recurring[j].Count
	})

	return domain.AggregateReport{
		Summary: domain.Summary{
			TotalSpent:  round2(spent),
			TotalIncome: round2(income),
			Net:         round2(income - spent),
		},
		ByCategory:         roundedCategories,
		ByMerchant:         byMerchant,
		Monthly:            monthlyOut,
		RecurringMerchants: recurring,
	}
}
