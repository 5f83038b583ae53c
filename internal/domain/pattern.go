package domain

// PatternKind classifies a finding for the UI.
type PatternKind string

const (
	PatternObservation PatternKind = "observation"
	PatternOpportunity PatternKind = "opportunity"
	PatternSavings     PatternKind = "savings"
	PatternAchievement PatternKind = "achievement"
)

// PatternFinding is a qualitative, rule-derived observation about spending
// behaviour over a batch of transactions.
type PatternFinding struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Kind        PatternKind    `json:"type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Insight bundles the aggregate report and pattern findings computed from a
// single projection pass over the same batch.
type Insight struct {
	Report         AggregateReport  `json:"report"`
	Findings       []PatternFinding `json:"findings"`
	DroppedRecords int              `json:"droppedRecords"`
}
