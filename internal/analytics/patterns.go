package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/moneymaven/insights/internal/domain"
)

// Detector thresholds. Kept as named defaults so they can be tuned through
// configuration without touching detector logic.
const (
	DefaultSubscriptionCount  = 3
	DefaultClusterPairs       = 2
	DefaultClusterWindowHours = 3
	DefaultSalaryFloor        = 10000.0
	DefaultSavingsWindowHours = 48
)

// Thresholds carries the tunable limits for every pattern detector.
type Thresholds struct {
	// SubscriptionCount: a savings finding fires only when the number of
	// recurring payments strictly exceeds this.
	SubscriptionCount int
	// ClusterPairs: an impulse finding fires only when the number of close
	// card-purchase pairs strictly exceeds this.
	ClusterPairs int
	// ClusterWindow is the maximum gap between two card purchases for them
	// to count as one close pair.
	ClusterWindow time.Duration
	// SalaryFloor is the minimum credit amount treated as a salary.
	SalaryFloor float64
	// SavingsWindow is how long after payday a transfer still counts as
	// prompt saving.
	SavingsWindow time.Duration
}

// DefaultThresholds returns the production detector limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SubscriptionCount: DefaultSubscriptionCount,
		ClusterPairs:      DefaultClusterPairs,
		ClusterWindow:     DefaultClusterWindowHours * time.Hour,
		SalaryFloor:       DefaultSalaryFloor,
		SavingsWindow:     DefaultSavingsWindowHours * time.Hour,
	}
}

// detectorFunc is the shared contract every detector implements: a pure
// function of the batch that emits zero or more findings.
type detectorFunc func(txs []domain.AnalyticsTransaction, th Thresholds) []domain.PatternFinding

type detector struct {
	name string
	run  detectorFunc
}

// detectors is the fixed, ordered list the engine runs. Output order is
// declaration order here, then each detector's internal emission order.
var detectors = []detector{
	{name: "weekend_concentration", run: detectWeekendConcentration},
	{name: "subscription_concentration", run: detectSubscriptionConcentration},
	{name: "impulse_clusters", run: detectImpulseClusters},
	{name: "payday_handling", run: detectPaydayHandling},
}

// DetectPatterns runs every detector over the batch. A detector that panics
// contributes no findings; the remaining detectors still run, so one
// misbehaving heuristic can never fail a whole request.
func DetectPatterns(txs []domain.AnalyticsTransaction, th Thresholds) []domain.PatternFinding {
	findings := make([]domain.PatternFinding, 0)
	for _, d := range detectors {
		findings = append(findings, runDetector(d, txs, th)...)
	}
	return findings
}

func runDetector(d detector, txs []domain.AnalyticsTransaction, th Thresholds) (out []domain.PatternFinding) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	return d.run(txs, th)
}

// detectWeekendConcentration emits an observation when Saturday+Sunday
// debit spend exceeds weekday debit spend, citing the weekend share of the
// combined total as a whole percentage.
func detectWeekendConcentration(txs []domain.AnalyticsTransaction, _ Thresholds) []domain.PatternFinding {
	var weekend, weekday float64

	for _, tx := range txs {
		if tx.Type == domain.Credit {
			continue
		}
		day, err := parseDate(tx.Date)
		if err != nil {
			continue
		}
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			weekend += tx.Amount
		default:
			weekday += tx.Amount
		}
	}

	if weekend <= weekday {
		return nil
	}

	share := int(math.Round(weekend / (weekend + weekday) * 100))
	return []domain.PatternFinding{{
		Title: "The Weekend Warrior",
		Description: fmt.Sprintf(
			"You spend %d%% of your money on weekends. Consider if these are planned or lifestyle spends.",
			share),
		Kind: domain.PatternObservation,
	}}
}

// detectSubscriptionConcentration counts subscription-category transactions
// and debit orders together. Both signals describe recurring commitments;
// the union is intentional.
func detectSubscriptionConcentration(txs []domain.AnalyticsTransaction, th Thresholds) []domain.PatternFinding {
	count := 0
	var total float64

	for _, tx := range txs {
		if tx.Category == domain.CategorySubscriptions || tx.TransactionType == domain.TypeDebitOrders {
			count++
			total += tx.Amount
		}
	}

	if count <= th.SubscriptionCount {
		return nil
	}

	return []domain.PatternFinding{{
		Title: "Subscription Sleuth",
		Description: fmt.Sprintf(
			"We found %d recurring payments totaling R%.2f. Are you still using all of these?",
			count, total),
		Kind: domain.PatternSavings,
	}}
}

// detectImpulseClusters counts adjacent card purchases made within the
// cluster window of each other and flags shopping sprints.
func detectImpulseClusters(txs []domain.AnalyticsTransaction, th Thresholds) []domain.PatternFinding {
	type stamped struct {
		at time.Time
	}

	purchases := make([]stamped, 0)
	for _, tx := range txs {
		if tx.Type != domain.Debit || tx.TransactionType != domain.TypeCardPurchases {
			continue
		}
		at, err := parseDate(tx.Date)
		if err != nil {
			continue
		}
		purchases = append(purchases, stamped{at: at})
	}

	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].at.Before(purchases[j].at)
	})

	pairs := 0
	for i := 0; i+1 < len(purchases); i++ {
		gap := purchases[i+1].at.Sub(purchases[i].at)
		if gap >= 0 && gap <= th.ClusterWindow {
			pairs++
		}
	}

	if pairs <= th.ClusterPairs {
		return nil
	}

	return []domain.PatternFinding{{
		Title: "Impulse Cluster Detected",
		Description: fmt.Sprintf(
			"You've had %d shopping sprints this month. Setting a 1-hour \"cool-down\" period could save you from unplanned buys.",
			pairs),
		Kind: domain.PatternOpportunity,
	}}
}

// detectPaydayHandling finds the first salary-sized credit and checks
// whether money moved to savings within the configured window after it.
func detectPaydayHandling(txs []domain.AnalyticsTransaction, th Thresholds) []domain.PatternFinding {
	var payday *time.Time
	for _, tx := range txs {
		if tx.Type != domain.Credit || tx.Amount <= th.SalaryFloor {
			continue
		}
		at, err := parseDate(tx.Date)
		if err != nil {
			continue
		}
		payday = &at
		break
	}

	if payday == nil {
		return nil
	}

	for _, tx := range txs {
		if tx.Type != domain.Debit || tx.Category != domain.CategoryTransfers {
			continue
		}
		at, err := parseDate(tx.Date)
		if err != nil {
			continue
		}
		elapsed := at.Sub(*payday)
		if elapsed >= 0 && elapsed <= th.SavingsWindow {
			return []domain.PatternFinding{{
				Title: "Payday Pro",
				Description: fmt.Sprintf(
					"Great job! You moved money to savings within %d hours of getting paid.",
					int(th.SavingsWindow.Hours())),
				Kind: domain.PatternAchievement,
			}}
		}
	}

	return []domain.PatternFinding{{
		Title:       "Payday Opportunity",
		Description: "You've received your salary! Consider moving 10% to a savings pocket before the 'Weekend Warrior' kicks in.",
		Kind:        domain.PatternOpportunity,
	}}
}
