package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const syncLogsTable = "sync_logs"

// SyncLogRepository records the outcome of account sync runs.
type SyncLogRepository struct {
	client  *bigquery.Client
	dataset string
}

func NewSyncLogRepository(ctx context.Context, projectID, dataset string) (*SyncLogRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSyncLogRepository: creating client: %w", err)
	}
	return &SyncLogRepository{client: client, dataset: dataset}, nil
}

func (r *SyncLogRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartSync inserts a RUNNING log row and returns the generated sync id.
func (r *SyncLogRepository) StartSync(ctx context.Context, accountID string) (string, error) {
	row := &SyncLogRow{
		SyncID:    uuid.NewString(),
		AccountID: accountID,
		Status:    "RUNNING",
		StartedTS: time.Now().UTC(),
	}

	inserter := r.client.Dataset(r.dataset).Table(syncLogsTable).Inserter()
	if err := inserter.Put(ctx, []*SyncLogRow{row}); err != nil {
		return "", fmt.Errorf("StartSync: inserting row: %w", err)
	}
	return row.SyncID, nil
}

// MarkSyncSucceeded sets status=SUCCESS with the run's counters.
func (r *SyncLogRepository) MarkSyncSucceeded(ctx context.Context, syncID string, fetched, dropped, findings int) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    fetched_count = @fetched_count,
		    dropped_count = @dropped_count,
		    findings_count = @findings_count,
		    finished_ts = @finished_ts
		WHERE sync_id = @sync_id
	`, r.dataset, syncLogsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "fetched_count", Value: int64(fetched)},
		{Name: "dropped_count", Value: int64(dropped)},
		{Name: "findings_count", Value: int64(findings)},
		{Name: "finished_ts", Value: time.Now().UTC()},
		{Name: "sync_id", Value: syncID},
	}

	return runDML(ctx, q, "MarkSyncSucceeded")
}

// MarkSyncFailed sets status=FAILED with a truncated error message.
func (r *SyncLogRepository) MarkSyncFailed(ctx context.Context, syncID string, syncErr error) error {
	errMsg := ""
	if syncErr != nil {
		errMsg = syncErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    error_message = @error_message,
		    finished_ts = @finished_ts
		WHERE sync_id = @sync_id
	`, r.dataset, syncLogsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "error_message", Value: errMsg},
		{Name: "finished_ts", Value: time.Now().UTC()},
		{Name: "sync_id", Value: syncID},
	}

	return runDML(ctx, q, "MarkSyncFailed")
}

// ListRecent returns the latest sync log rows, newest first.
func (r *SyncLogRepository) ListRecent(ctx context.Context, limit int) ([]*SyncLogRow, error) {
	if limit <= 0 {
		limit = 10
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			sync_id,
			account_id,
			status,
			fetched_count,
			dropped_count,
			findings_count,
			error_message,
			started_ts,
			finished_ts
		FROM %s.%s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.dataset, syncLogsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: query read: %w", err)
	}

	var rows []*SyncLogRow
	for {
		var row SyncLogRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecent: iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// runDML runs a mutation query and waits for the job to finish.
func runDML(ctx context.Context, q *bigquery.Query, op string) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: running query: %w", op, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: waiting for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}
	return nil
}
