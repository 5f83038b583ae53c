package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moneymaven/insights/internal/domain"
)

// MalformedTipsError reports a model response that could not be turned into
// a valid tips payload. Raw carries the original text for debugging.
type MalformedTipsError struct {
	Reason string
	Raw    string
}

func (e *MalformedTipsError) Error() string {
	return fmt.Sprintf("malformed tips response: %s", e.Reason)
}

// ParseTipsResponse cleans the raw model output and validates it against the
// strict tips contract. Unknown enum values, missing fields or a wrong
// top-level shape all reject the whole response.
func ParseTipsResponse(raw string) (*domain.TipsResponse, error) {
	clean := cleanModelJSON(raw)

	var resp domain.TipsResponse
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&resp); err != nil {
		return nil, &MalformedTipsError{Reason: fmt.Sprintf("invalid JSON: %v", err), Raw: raw}
	}

	if resp.Title == "" {
		return nil, &MalformedTipsError{Reason: "missing title", Raw: raw}
	}
	if len(resp.Tips) == 0 {
		return nil, &MalformedTipsError{Reason: "no tips in response", Raw: raw}
	}

	for i, tip := range resp.Tips {
		if tip.Title == "" || tip.Description == "" || tip.ImpactLabel == "" {
			return nil, &MalformedTipsError{
				Reason: fmt.Sprintf("tip %d is missing a required field", i),
				Raw:    raw,
			}
		}
		if !validTipCategory(tip.Category) {
			return nil, &MalformedTipsError{
				Reason: fmt.Sprintf("tip %d has unknown category %q", i, tip.Category),
				Raw:    raw,
			}
		}
		if !validTipConfidence(tip.Confidence) {
			return nil, &MalformedTipsError{
				Reason: fmt.Sprintf("tip %d has unknown confidence %q", i, tip.Confidence),
				Raw:    raw,
			}
		}
	}

	return &resp, nil
}

func validTipCategory(c domain.TipCategory) bool {
	switch c {
	case domain.TipBudgeting, domain.TipSavings, domain.TipAutomation,
		domain.TipRewards, domain.TipAwareness, domain.TipRisk:
		return true
	}
	return false
}

func validTipConfidence(c domain.TipConfidence) bool {
	switch c {
	case domain.ConfidenceLow, domain.ConfidenceMedium, domain.ConfidenceHigh:
		return true
	}
	return false
}

// cleanModelJSON strips Markdown fences and surrounding prose when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if prose surrounds it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
