package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/moneymaven/insights/internal/domain"
)

// BuildCategoryBreakdown turns a category spend map into dashboard-ready
// shares. Percentages are integers distributed with the largest-remainder
// method so they always sum to exactly 100. A zero total yields an empty
// slice.
func BuildCategoryBreakdown(byCategory map[domain.Category]float64) []domain.CategoryShare {
	var total float64
	for _, amount := range byCategory {
		total += amount
	}
	if total == 0 {
		return []domain.CategoryShare{}
	}

	type share struct {
		category  domain.Category
		amount    float64
		percent   int
		remainder float64
	}

	shares := make([]share, 0, len(byCategory))
	for category, amount := range byCategory {
		raw := amount / total * 100
		shares = append(shares, share{
			category:  category,
			amount:    amount,
			percent:   int(math.Floor(raw)),
			remainder: raw - math.Floor(raw),
		})
	}

	// Deterministic base order: amount descending, category name as tie
	// break, so equal inputs always render the same way.
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].amount != shares[j].amount {
			return shares[i].amount > shares[j].amount
		}
		return shares[i].category < shares[j].category
	})

	assigned := 0
	for _, s := range shares {
		assigned += s.percent
	}

	// Hand the leftover points to the largest remainders first.
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return shares[order[i]].remainder > shares[order[j]].remainder
	})
	for _, idx := range order {
		if assigned >= 100 {
			break
		}
		shares[idx].percent++
		assigned++
	}

	out := make([]domain.CategoryShare, 0, len(shares))
	for _, s := range shares {
		out = append(out, domain.CategoryShare{
			Category: s.category,
			Label:    beautifyCategory(s.category),
			Amount:   round2(s.amount),
			Percent:  s.percent,
		})
	}
	return out
}

// beautifyCategory turns "eating_out" into "Eating Out".
func beautifyCategory(category domain.Category) string {
	words := strings.FieldsFunc(string(category), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
