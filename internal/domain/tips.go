package domain

// TipCategory buckets a personalized tip for rendering.
type TipCategory string

const (
	TipBudgeting  TipCategory = "BUDGETING"
	TipSavings    TipCategory = "SAVINGS"
	TipAutomation TipCategory = "AUTOMATION"
	TipRewards    TipCategory = "REWARDS"
	TipAwareness  TipCategory = "AWARENESS"
	TipRisk       TipCategory = "RISK"
)

// TipConfidence is the model's self-reported confidence in a tip.
type TipConfidence string

const (
	ConfidenceLow    TipConfidence = "LOW"
	ConfidenceMedium TipConfidence = "MEDIUM"
	ConfidenceHigh   TipConfidence = "HIGH"
)

// Tip is one actionable recommendation produced by the advisor model.
type Tip struct {
	Title       string        `json:"title"`
	Category    TipCategory   `json:"category"`
	Description string        `json:"description"`
	ImpactLabel string        `json:"impactLabel"`
	Confidence  TipConfidence `json:"confidence"`
}

// TipsResponse is the strict shape the advisor model must return.
type TipsResponse struct {
	Title string `json:"title"`
	Tips  []Tip  `json:"tips"`
}
