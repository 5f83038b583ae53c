package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/domain"
)

const rulesTable = "category_rules"

// RuleRepository versions the keyword rule table. Analytics falls back to
// the compiled-in default when the table is empty.
type RuleRepository struct {
	client  *bigquery.Client
	dataset string
}

func NewRuleRepository(ctx context.Context, projectID, dataset string) (*RuleRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRuleRepository: creating client: %w", err)
	}
	return &RuleRepository{client: client, dataset: dataset}, nil
}

func (r *RuleRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ActiveRuleset returns the active rules in position order, ready for the
// categorizer. An empty table yields the compiled-in default ruleset.
func (r *RuleRepository) ActiveRuleset(ctx context.Context) (analytics.Ruleset, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			category,
			keywords,
			position,
			is_active
		FROM %s.%s
		WHERE is_active = TRUE
		ORDER BY position
	`, r.dataset, rulesTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ActiveRuleset: query read: %w", err)
	}

	var rules analytics.Ruleset
	for {
		var row RuleRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ActiveRuleset: iter next: %w", err)
		}
		rules = append(rules, analytics.Rule{
			Category: domain.Category(row.Category),
			Keywords: row.Keywords,
		})
	}

	if len(rules) == 0 {
		return analytics.DefaultRuleset(), nil
	}
	return rules, nil
}
