package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/domain"
)

type stubGenerator struct {
	response string
	err      error

	gotSystem string
	gotUser   string
}

func (s *stubGenerator) Generate(_ context.Context, system, user string) (string, error) {
	s.gotSystem = system
	s.gotUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func sampleBatch() []domain.AnalyticsTransaction {
	return []domain.AnalyticsTransaction{
		{ID: "tx-1", Description: "NETFLIX.COM", Amount: 199, Type: domain.Debit, Date: "2025-03-05"},
		{ID: "tx-2", Description: "CHECKERS SEA PNT", Amount: 350.10, Type: domain.Debit, Date: "2025-03-08"},
	}
}

func TestAdvisor_PersonalizedTips(t *testing.T) {
	gen := &stubGenerator{response: validTips}
	a := New(gen, zerolog.Nop())

	tips, err := a.PersonalizedTips(context.Background(), sampleBatch())
	if err != nil {
		t.Fatalf("PersonalizedTips: %v", err)
	}
	if len(tips.Tips) != 2 {
		t.Errorf("len(tips) = %d, want 2", len(tips.Tips))
	}

	// The prompt carries each transaction as one "date - description - Ramount" line.
	if !strings.Contains(gen.gotUser, "2025-03-05 - NETFLIX.COM - R199.00") {
		t.Errorf("user prompt missing transaction line:\n%s", gen.gotUser)
	}
	if !strings.Contains(gen.gotSystem, "Return ONLY valid JSON") {
		t.Error("system prompt missing the strict-JSON instruction")
	}
}

func TestAdvisor_PersonalizedTips_GeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	a := New(gen, zerolog.Nop())

	if _, err := a.PersonalizedTips(context.Background(), sampleBatch()); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}

func TestAdvisor_PersonalizedTips_MalformedResponse(t *testing.T) {
	gen := &stubGenerator{response: "sorry, I can't do that"}
	a := New(gen, zerolog.Nop())

	_, err := a.PersonalizedTips(context.Background(), sampleBatch())
	var malformed *MalformedTipsError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedTipsError", err)
	}
}

func TestAdvisor_PersonalizedTips_EmptyBatch(t *testing.T) {
	gen := &stubGenerator{response: validTips}
	a := New(gen, zerolog.Nop())

	if _, err := a.PersonalizedTips(context.Background(), nil); err == nil {
		t.Fatal("expected an error for an empty batch")
	}
	if gen.gotUser != "" {
		t.Error("model should not be called for an empty batch")
	}
}
