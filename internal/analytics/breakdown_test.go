package analytics

import (
	"testing"

	"github.com/moneymaven/insights/internal/domain"
)

func TestBuildCategoryBreakdown(t *testing.T) {
	byCategory := map[domain.Category]float64{
		domain.CategoryGroceries: 1000,
		domain.CategoryEatingOut: 500,
		domain.CategoryFuel:      500,
	}

	shares := BuildCategoryBreakdown(byCategory)
	if len(shares) != 3 {
		t.Fatalf("len = %d, want 3", len(shares))
	}

	// Largest amount first.
	if shares[0].Category != domain.CategoryGroceries || shares[0].Percent != 50 {
		t.Errorf("shares[0] = %+v", shares[0])
	}

	total := 0
	for _, s := range shares {
		total += s.Percent
	}
	if total != 100 {
		t.Errorf("percent sum = %d, want 100", total)
	}

	if shares[1].Label != "Eating Out" && shares[2].Label != "Eating Out" {
		t.Errorf("expected a beautified Eating Out label, got %+v", shares)
	}
}

func TestBuildCategoryBreakdown_LargestRemainder(t *testing.T) {
	// Three equal thirds floor to 33+33+33; one leftover point must land
	// somewhere so the total is exactly 100.
	byCategory := map[domain.Category]float64{
		domain.CategoryGroceries: 10,
		domain.CategoryEatingOut: 10,
		domain.CategoryFuel:      10,
	}

	shares := BuildCategoryBreakdown(byCategory)
	total := 0
	for _, s := range shares {
		total += s.Percent
	}
	if total != 100 {
		t.Errorf("percent sum = %d, want 100", total)
	}
}

func TestBuildCategoryBreakdown_Empty(t *testing.T) {
	if got := BuildCategoryBreakdown(nil); len(got) != 0 {
		t.Errorf("BuildCategoryBreakdown(nil) = %v, want empty", got)
	}
	if got := BuildCategoryBreakdown(map[domain.Category]float64{domain.CategoryFuel: 0}); len(got) != 0 {
		t.Errorf("zero total should yield empty breakdown, got %v", got)
	}
}
