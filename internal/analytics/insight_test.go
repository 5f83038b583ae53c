package analytics

import (
	"testing"

	"github.com/moneymaven/insights/internal/domain"
)

func TestBuildInsight_PaydayScenario(t *testing.T) {
	raw := []domain.ProviderTransaction{
		{
			UUID:            "c1",
			AccountID:       "acc-1",
			Description:     "Salary payment",
			Amount:          15000,
			Type:            domain.Credit,
			TransactionType: domain.TypeDeposits,
			TransactionDate: "2025-03-01",
		},
		{
			UUID:            "d1",
			AccountID:       "acc-1",
			Description:     "Transfer to savings pocket",
			Amount:          -2000,
			Type:            domain.Debit,
			TransactionType: domain.TypeOnlineBankingPayments,
			TransactionDate: "2025-03-02",
		},
	}

	insight := BuildInsight(raw, DefaultOptions())

	if insight.DroppedRecords != 0 {
		t.Errorf("dropped = %d, want 0", insight.DroppedRecords)
	}
	if insight.Report.Summary.TotalIncome != 15000.00 {
		t.Errorf("TotalIncome = %v, want 15000.00", insight.Report.Summary.TotalIncome)
	}
	if insight.Report.Summary.TotalSpent != 2000.00 {
		t.Errorf("TotalSpent = %v, want 2000.00", insight.Report.Summary.TotalSpent)
	}
	if insight.Report.Summary.Net != 13000.00 {
		t.Errorf("Net = %v, want 13000.00", insight.Report.Summary.Net)
	}

	achievement := findByKind(insight.Findings, domain.PatternAchievement)
	if achievement == nil {
		t.Fatalf("expected an achievement finding, got %v", insight.Findings)
	}
	if achievement.Title != "Payday Pro" {
		t.Errorf("title = %q", achievement.Title)
	}
}

func TestBuildInsight_SubscriptionScenario(t *testing.T) {
	sub := func(id, desc, date string) domain.ProviderTransaction {
		return domain.ProviderTransaction{
			UUID:            id,
			AccountID:       "acc-1",
			Description:     desc,
			Amount:          -199,
			Type:            domain.Debit,
			TransactionType: domain.TypeCardPurchases,
			TransactionDate: date,
		}
	}

	raw := []domain.ProviderTransaction{
		sub("s1", "Netflix.com", "2025-03-01"),
		sub("s2", "Spotify Premium", "2025-03-02"),
		sub("s3", "Afrihost ISP", "2025-03-03"),
		sub("s4", "Netflix.com", "2025-04-01"),
	}

	opts := DefaultOptions()
	opts.RecurringMinCount = 2
	insight := BuildInsight(raw, opts)

	// Four qualifying subscriptions exceed the >3 threshold.
	savings := findByKind(insight.Findings, domain.PatternSavings)
	if savings == nil {
		t.Fatalf("expected a savings finding for 4 subscriptions, got %v", insight.Findings)
	}

	// Netflix appears twice, so it is recurring at threshold 2.
	found := false
	for _, rm := range insight.Report.RecurringMerchants {
		if rm.Merchant == "netflixcom" && rm.Count == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("recurring merchants = %v, want netflixcom with count 2", insight.Report.RecurringMerchants)
	}
}

func TestBuildInsight_SingleProjectionFeedsBoth(t *testing.T) {
	raw := []domain.ProviderTransaction{
		{UUID: "bad", Type: domain.Debit, TransactionDate: "not-a-date"},
		{
			UUID: "d1", Description: "CHECKERS", Amount: -100,
			Type: domain.Debit, TransactionType: domain.TypeCardPurchases,
			TransactionDate: "2025-03-03",
		},
	}

	insight := BuildInsight(raw, DefaultOptions())

	if insight.DroppedRecords != 1 {
		t.Errorf("dropped = %d, want 1", insight.DroppedRecords)
	}
	// The malformed record is invisible to the aggregate as well.
	if insight.Report.Summary.TotalSpent != 100 {
		t.Errorf("TotalSpent = %v, want 100", insight.Report.Summary.TotalSpent)
	}
}

func TestBuildInsight_EmptyBatch(t *testing.T) {
	insight := BuildInsight(nil, DefaultOptions())

	if len(insight.Findings) != 0 {
		t.Errorf("findings = %v, want none", insight.Findings)
	}
	if insight.Report.Summary != (domain.Summary{}) {
		t.Errorf("summary = %+v, want zero", insight.Report.Summary)
	}
}
