package advisor

import (
	"errors"
	"testing"

	"github.com/moneymaven/insights/internal/domain"
)

const validTips = `{
  "title": "Personalized Tips",
  "tips": [
    {
      "title": "Trim your subscriptions",
      "category": "SAVINGS",
      "description": "You pay for 4 streaming services. Cancelling one saves money every month.",
      "impactLabel": "+R199 / month",
      "confidence": "HIGH"
    },
    {
      "title": "Automate payday savings",
      "category": "AUTOMATION",
      "description": "Your salary arrives on the 25th. A scheduled transfer removes the temptation to spend it.",
      "impactLabel": "+R1500 / month",
      "confidence": "MEDIUM"
    }
  ]
}`

func TestParseTipsResponse(t *testing.T) {
	resp, err := ParseTipsResponse(validTips)
	if err != nil {
		t.Fatalf("ParseTipsResponse: %v", err)
	}
	if resp.Title != "Personalized Tips" || len(resp.Tips) != 2 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Tips[0].Category != domain.TipSavings || resp.Tips[1].Confidence != domain.ConfidenceMedium {
		t.Errorf("tips decoded wrong: %+v", resp.Tips)
	}
}

func TestParseTipsResponse_StripsFences(t *testing.T) {
	fenced := "```json\n" + validTips + "\n```"
	if _, err := ParseTipsResponse(fenced); err != nil {
		t.Errorf("fenced payload rejected: %v", err)
	}

	prose := "Here are your tips:\n\n" + validTips + "\n\nHope this helps."
	if _, err := ParseTipsResponse(prose); err != nil {
		t.Errorf("prose-wrapped payload rejected: %v", err)
	}
}

func TestParseTipsResponse_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I cannot help with that."},
		{"empty tips", `{"title": "Personalized Tips", "tips": []}`},
		{"missing title", `{"tips": [{"title": "t", "category": "SAVINGS", "description": "d", "impactLabel": "i", "confidence": "LOW"}]}`},
		{
			"unknown category",
			`{"title": "Tips", "tips": [{"title": "t", "category": "INVESTING", "description": "d", "impactLabel": "i", "confidence": "LOW"}]}`,
		},
		{
			"unknown confidence",
			`{"title": "Tips", "tips": [{"title": "t", "category": "SAVINGS", "description": "d", "impactLabel": "i", "confidence": "CERTAIN"}]}`,
		},
		{
			"missing impact label",
			`{"title": "Tips", "tips": [{"title": "t", "category": "SAVINGS", "description": "d", "confidence": "LOW"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTipsResponse(tt.raw)
			if err == nil {
				t.Fatal("expected an error")
			}
			var malformed *MalformedTipsError
			if !errors.As(err, &malformed) {
				t.Errorf("error type = %T, want *MalformedTipsError", err)
			}
			if malformed.Raw != tt.raw {
				t.Error("error should carry the original raw text")
			}
		})
	}
}
