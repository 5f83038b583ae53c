package bigquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/moneymaven/insights/internal/domain"
)

const snapshotsTable = "insight_snapshots"

// SnapshotRepository stores computed insight snapshots. It holds a shared
// BigQuery client to avoid creating a new connection for each operation.
type SnapshotRepository struct {
	client  *bigquery.Client
	dataset string
}

func NewSnapshotRepository(ctx context.Context, projectID, dataset string) (*SnapshotRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSnapshotRepository: creating client: %w", err)
	}
	return &SnapshotRepository{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (r *SnapshotRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertSnapshot serializes the insight and inserts one snapshot row,
// returning the generated snapshot id.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, accountID string, from, to time.Time, insight domain.Insight) (string, error) {
	report, err := json.Marshal(insight.Report)
	if err != nil {
		return "", fmt.Errorf("InsertSnapshot: marshal report: %w", err)
	}
	findings, err := json.Marshal(insight.Findings)
	if err != nil {
		return "", fmt.Errorf("InsertSnapshot: marshal findings: %w", err)
	}

	row := &SnapshotRow{
		SnapshotID:     uuid.NewString(),
		AccountID:      accountID,
		PeriodStart:    civil.DateOf(from),
		PeriodEnd:      civil.DateOf(to),
		Report:         string(report),
		Findings:       string(findings),
		DroppedRecords: int64(insight.DroppedRecords),
		CreatedTS:      time.Now().UTC(),
	}

	inserter := r.client.Dataset(r.dataset).Table(snapshotsTable).Inserter()
	if err := inserter.Put(ctx, []*SnapshotRow{row}); err != nil {
		return "", fmt.Errorf("InsertSnapshot: inserting row: %w", err)
	}
	return row.SnapshotID, nil
}

// LatestSnapshot returns the most recent snapshot for the account, or nil
// when none exists.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context, accountID string) (*SnapshotRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			snapshot_id,
			account_id,
			period_start,
			period_end,
			report,
			findings,
			dropped_records,
			created_ts
		FROM %s.%s
		WHERE account_id = @account_id
		ORDER BY created_ts DESC
		LIMIT 1
	`, r.dataset, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LatestSnapshot: query read: %w", err)
	}

	var row SnapshotRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestSnapshot: iter next: %w", err)
	}
	return &row, nil
}

// ListSnapshots returns the account's snapshots, newest first.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, accountID string, limit int) ([]*SnapshotRow, error) {
	if limit <= 0 {
		limit = 10
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			snapshot_id,
			account_id,
			period_start,
			period_end,
			report,
			findings,
			dropped_records,
			created_ts
		FROM %s.%s
		WHERE account_id = @account_id
		ORDER BY created_ts DESC
		LIMIT @limit
	`, r.dataset, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListSnapshots: query read: %w", err)
	}

	var rows []*SnapshotRow
	for {
		var row SnapshotRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListSnapshots: iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}
