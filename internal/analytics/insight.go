package analytics

import (
	"github.com/moneymaven/insights/internal/domain"
)

// Options bundles everything BuildInsight needs besides the batch itself.
// Session or account state must never leak in here; callers pass all inputs
// explicitly.
type Options struct {
	Rules             Ruleset
	Thresholds        Thresholds
	RecurringMinCount int
}

// DefaultOptions returns the compiled-in rule table and detector limits.
func DefaultOptions() Options {
	return Options{
		Rules:             DefaultRuleset(),
		Thresholds:        DefaultThresholds(),
		RecurringMinCount: DefaultRecurringMinCount,
	}
}

// BuildInsight projects the raw batch once and feeds the same projected
// slice to both the aggregator and the pattern engine, so the two results
// can never disagree about their input.
func BuildInsight(raw []domain.ProviderTransaction, opts Options) domain.Insight {
	if opts.Rules == nil {
		opts.Rules = DefaultRuleset()
	}

	txs, dropped := Project(raw, opts.Rules)

	return domain.Insight{
		Report:         Aggregate(txs, AggregateOptions{RecurringMinCount: opts.RecurringMinCount}),
		Findings:       DetectPatterns(txs, opts.Thresholds),
		DroppedRecords: dropped,
	}
}
