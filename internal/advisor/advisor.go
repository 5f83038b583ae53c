package advisor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/moneymaven/insights/internal/domain"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Generator produces raw model output for a system/user prompt pair.
// The production implementation talks to Gemini; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GeminiGenerator calls the Gemini API through the official client.
type GeminiGenerator struct {
	model string
}

var _ Generator = &GeminiGenerator{}

func NewGeminiGenerator(model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGenerator{model: model}
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: user},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Generate: empty response from model")
	}
	return text, nil
}

// Advisor turns a transaction batch into personalized tips.
type Advisor struct {
	gen Generator
	log zerolog.Logger
}

func New(gen Generator, log zerolog.Logger) *Advisor {
	return &Advisor{gen: gen, log: log}
}

// PersonalizedTips prompts the model with the batch and returns the parsed,
// validated tips. A response that fails validation is never partially
// returned; callers get a *MalformedTipsError instead.
func (a *Advisor) PersonalizedTips(ctx context.Context, txs []domain.AnalyticsTransaction) (*domain.TipsResponse, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("PersonalizedTips: empty transaction batch")
	}

	raw, err := a.gen.Generate(ctx, systemPrompt, buildUserPrompt(txs))
	if err != nil {
		return nil, fmt.Errorf("PersonalizedTips: %w", err)
	}

	tips, err := ParseTipsResponse(raw)
	if err != nil {
		a.log.Warn().Err(err).Int("transactions", len(txs)).Msg("advisor returned a malformed response")
		return nil, fmt.Errorf("PersonalizedTips: %w", err)
	}

	a.log.Info().Int("tips", len(tips.Tips)).Msg("generated personalized tips")
	return tips, nil
}
