package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/moneymaven/insights/internal/domain"
)

func findByKind(findings []domain.PatternFinding, kind domain.PatternKind) *domain.PatternFinding {
	for i := range findings {
		if findings[i].Kind == kind {
			return &findings[i]
		}
	}
	return nil
}

func TestDetectWeekendConcentration(t *testing.T) {
	th := DefaultThresholds()

	// 2025-03-01 is a Saturday, 2025-03-03 a Monday.
	weekendHeavy := []domain.AnalyticsTransaction{
		debit("d1", "bar", 900, domain.CategoryEatingOut, "2025-03-01"),
		debit("d2", "spar", 100, domain.CategoryGroceries, "2025-03-03"),
	}

	findings := detectWeekendConcentration(weekendHeavy, th)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Kind != domain.PatternObservation {
		t.Errorf("kind = %q, want observation", findings[0].Kind)
	}
	if !strings.Contains(findings[0].Description, "90%") {
		t.Errorf("description %q should cite a 90%% weekend share", findings[0].Description)
	}

	// Never fires when weekday spend is at least the weekend spend.
	balanced := []domain.AnalyticsTransaction{
		debit("d1", "bar", 500, domain.CategoryEatingOut, "2025-03-01"),
		debit("d2", "spar", 500, domain.CategoryGroceries, "2025-03-03"),
	}
	if got := detectWeekendConcentration(balanced, th); len(got) != 0 {
		t.Errorf("detector fired on balanced spend: %v", got)
	}

	// Credits are ignored entirely.
	withSalary := append([]domain.AnalyticsTransaction{
		credit("c1", 50000, "2025-03-01"),
	}, balanced...)
	if got := detectWeekendConcentration(withSalary, th); len(got) != 0 {
		t.Errorf("detector counted a credit: %v", got)
	}
}

func TestDetectSubscriptionConcentration(t *testing.T) {
	th := DefaultThresholds()

	sub := func(id string, amount float64) domain.AnalyticsTransaction {
		return debit(id, "netflix", amount, domain.CategorySubscriptions, "2025-03-05")
	}

	// Exactly the threshold count must NOT fire.
	three := []domain.AnalyticsTransaction{sub("s1", 99), sub("s2", 120), sub("s3", 149)}
	if got := detectSubscriptionConcentration(three, th); len(got) != 0 {
		t.Errorf("fired at count == threshold: %v", got)
	}

	// One more fires, citing count and a 2-decimal total.
	four := append(three, sub("s4", 59.99))
	findings := detectSubscriptionConcentration(four, th)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Kind != domain.PatternSavings {
		t.Errorf("kind = %q, want savings", findings[0].Kind)
	}
	if !strings.Contains(findings[0].Description, "4 recurring payments") {
		t.Errorf("description missing count: %q", findings[0].Description)
	}
	if !strings.Contains(findings[0].Description, "R427.99") {
		t.Errorf("description missing total: %q", findings[0].Description)
	}
}

func TestDetectSubscriptionConcentration_CountsDebitOrders(t *testing.T) {
	th := DefaultThresholds()

	// Debit orders count even when their category is not subscriptions.
	order := func(id string) domain.AnalyticsTransaction {
		tx := debit(id, "insurer", 350, domain.CategoryUncategorized, "2025-03-02")
		tx.TransactionType = domain.TypeDebitOrders
		return tx
	}

	txs := []domain.AnalyticsTransaction{
		order("o1"), order("o2"), order("o3"),
		debit("s1", "netflix", 199, domain.CategorySubscriptions, "2025-03-05"),
	}

	findings := detectSubscriptionConcentration(txs, th)
	if len(findings) != 1 {
		t.Fatalf("union of subscriptions and debit orders should fire, got %d findings", len(findings))
	}
}

func TestDetectImpulseClusters(t *testing.T) {
	th := DefaultThresholds()

	purchase := func(id, at string) domain.AnalyticsTransaction {
		tx := debit(id, "takealot", 150, domain.CategoryShopping, at)
		tx.TransactionType = domain.TypeCardPurchases
		return tx
	}

	// Purchases at 09:00, 10:00, 11:00, 12:00: three adjacent pairs, all
	// within the 3h window, which exceeds the 2-pair threshold.
	spree := []domain.AnalyticsTransaction{
		purchase("p1", "2025-03-07T09:00:00Z"),
		purchase("p2", "2025-03-07T10:00:00Z"),
		purchase("p3", "2025-03-07T11:00:00Z"),
		purchase("p4", "2025-03-07T12:00:00Z"),
	}

	findings := detectImpulseClusters(spree, th)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Kind != domain.PatternOpportunity {
		t.Errorf("kind = %q, want opportunity", findings[0].Kind)
	}
	if !strings.Contains(findings[0].Description, "3 shopping sprints") {
		t.Errorf("description = %q, want 3 sprints", findings[0].Description)
	}

	// Exactly the threshold count of pairs must not fire.
	if got := detectImpulseClusters(spree[:3], th); len(got) != 0 {
		t.Errorf("fired at pairs == threshold: %v", got)
	}

	// Purchases spread out over days never fire.
	spread := []domain.AnalyticsTransaction{
		purchase("p1", "2025-03-01T09:00:00Z"),
		purchase("p2", "2025-03-03T09:00:00Z"),
		purchase("p3", "2025-03-05T09:00:00Z"),
		purchase("p4", "2025-03-07T09:00:00Z"),
	}
	if got := detectImpulseClusters(spread, th); len(got) != 0 {
		t.Errorf("fired on spread purchases: %v", got)
	}

	// Non-card debits are ignored.
	if got := detectImpulseClusters([]domain.AnalyticsTransaction{
		debit("d1", "spar", 100, domain.CategoryGroceries, "2025-03-07T09:00:00Z"),
		debit("d2", "spar", 100, domain.CategoryGroceries, "2025-03-07T09:30:00Z"),
		debit("d3", "spar", 100, domain.CategoryGroceries, "2025-03-07T10:00:00Z"),
		debit("d4", "spar", 100, domain.CategoryGroceries, "2025-03-07T10:30:00Z"),
	}, th); len(got) != 0 {
		t.Errorf("counted non-card purchases: %v", got)
	}
}

func TestDetectPaydayHandling(t *testing.T) {
	th := DefaultThresholds()

	t.Run("prompt transfer earns achievement", func(t *testing.T) {
		txs := []domain.AnalyticsTransaction{
			credit("c1", 15000, "2025-03-25"),
			debit("d1", "savings pocket", 2000, domain.CategoryTransfers, "2025-03-26"),
		}
		findings := detectPaydayHandling(txs, th)
		if len(findings) != 1 || findings[0].Kind != domain.PatternAchievement {
			t.Fatalf("findings = %v, want one achievement", findings)
		}
		if !strings.Contains(findings[0].Description, "48 hours") {
			t.Errorf("description = %q, want the default window mentioned", findings[0].Description)
		}
	})

	t.Run("achievement message reflects tuned window", func(t *testing.T) {
		tuned := th
		tuned.SavingsWindow = 24 * time.Hour
		txs := []domain.AnalyticsTransaction{
			credit("c1", 15000, "2025-03-25"),
			debit("d1", "savings pocket", 2000, domain.CategoryTransfers, "2025-03-25"),
		}
		findings := detectPaydayHandling(txs, tuned)
		if len(findings) != 1 || findings[0].Kind != domain.PatternAchievement {
			t.Fatalf("findings = %v, want one achievement", findings)
		}
		if !strings.Contains(findings[0].Description, "24 hours") {
			t.Errorf("description = %q, want the tuned window mentioned", findings[0].Description)
		}
	})

	t.Run("no transfer suggests opportunity", func(t *testing.T) {
		txs := []domain.AnalyticsTransaction{
			credit("c1", 15000, "2025-03-25"),
			debit("d1", "spar", 500, domain.CategoryGroceries, "2025-03-26"),
		}
		findings := detectPaydayHandling(txs, th)
		if len(findings) != 1 || findings[0].Kind != domain.PatternOpportunity {
			t.Fatalf("findings = %v, want one opportunity", findings)
		}
	})

	t.Run("transfer outside window does not count", func(t *testing.T) {
		txs := []domain.AnalyticsTransaction{
			credit("c1", 15000, "2025-03-01"),
			debit("d1", "savings pocket", 2000, domain.CategoryTransfers, "2025-03-10"),
		}
		findings := detectPaydayHandling(txs, th)
		if len(findings) != 1 || findings[0].Kind != domain.PatternOpportunity {
			t.Fatalf("findings = %v, want one opportunity", findings)
		}
	})

	t.Run("transfer before payday does not count", func(t *testing.T) {
		txs := []domain.AnalyticsTransaction{
			debit("d1", "savings pocket", 2000, domain.CategoryTransfers, "2025-03-20"),
			credit("c1", 15000, "2025-03-25"),
		}
		findings := detectPaydayHandling(txs, th)
		if len(findings) != 1 || findings[0].Kind != domain.PatternOpportunity {
			t.Fatalf("findings = %v, want one opportunity", findings)
		}
	})

	t.Run("small credits emit nothing", func(t *testing.T) {
		txs := []domain.AnalyticsTransaction{
			credit("c1", 5000, "2025-03-25"),
		}
		if got := detectPaydayHandling(txs, th); len(got) != 0 {
			t.Errorf("fired without a salary-sized credit: %v", got)
		}
	})
}

func TestDetectPatterns_EmptyBatch(t *testing.T) {
	findings := DetectPatterns(nil, DefaultThresholds())
	if len(findings) != 0 {
		t.Errorf("DetectPatterns(nil) = %v, want empty", findings)
	}
}

func TestRunDetector_IsolatesPanics(t *testing.T) {
	panicky := detector{
		name: "panicky",
		run: func([]domain.AnalyticsTransaction, Thresholds) []domain.PatternFinding {
			panic("malformed date")
		},
	}

	if got := runDetector(panicky, nil, DefaultThresholds()); got != nil {
		t.Errorf("panicking detector leaked findings: %v", got)
	}
}
