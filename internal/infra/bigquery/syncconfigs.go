package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const syncConfigsTable = "sync_configs"

// Sync intervals a config can choose from.
const (
	IntervalEvery6Hours = "EVERY_6_HOURS"
	IntervalDaily       = "DAILY"
	IntervalWeekly      = "WEEKLY"
)

// ValidInterval reports whether s is one of the supported sync intervals.
func ValidInterval(s string) bool {
	switch s {
	case IntervalEvery6Hours, IntervalDaily, IntervalWeekly:
		return true
	}
	return false
}

// NextSync computes the next run time for an interval. Unknown intervals
// fall back to the 6-hour cadence.
func NextSync(interval string, now time.Time) time.Time {
	switch interval {
	case IntervalDaily:
		return now.Add(24 * time.Hour)
	case IntervalWeekly:
		return now.Add(7 * 24 * time.Hour)
	default:
		return now.Add(6 * time.Hour)
	}
}

// SyncConfigRepository stores per-account sync schedules.
type SyncConfigRepository struct {
	client  *bigquery.Client
	dataset string
}

func NewSyncConfigRepository(ctx context.Context, projectID, dataset string) (*SyncConfigRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSyncConfigRepository: creating client: %w", err)
	}
	return &SyncConfigRepository{client: client, dataset: dataset}, nil
}

func (r *SyncConfigRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// GetSyncConfig returns the account's sync config, or nil when none exists.
func (r *SyncConfigRepository) GetSyncConfig(ctx context.Context, accountID string) (*SyncConfigRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			account_id,
			`+"`interval`"+`,
			enabled,
			last_sync_ts,
			next_sync_ts,
			updated_ts
		FROM %s.%s
		WHERE account_id = @account_id
		LIMIT 1
	`, r.dataset, syncConfigsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetSyncConfig: query read: %w", err)
	}

	var row SyncConfigRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetSyncConfig: iter next: %w", err)
	}
	return &row, nil
}

// SaveSyncConfig upserts the account's sync config, recomputing the next
// sync time from the interval.
func (r *SyncConfigRepository) SaveSyncConfig(ctx context.Context, accountID, interval string, enabled bool) error {
	if !ValidInterval(interval) {
		return fmt.Errorf("SaveSyncConfig: unknown interval %q", interval)
	}

	now := time.Now().UTC()
	q := r.client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @account_id AS account_id) s
		ON t.account_id = s.account_id
		WHEN MATCHED THEN UPDATE SET
			`+"`interval`"+` = @interval,
			enabled = @enabled,
			next_sync_ts = @next_sync_ts,
			updated_ts = @updated_ts
		WHEN NOT MATCHED THEN INSERT
			(account_id, `+"`interval`"+`, enabled, next_sync_ts, updated_ts)
		VALUES
			(@account_id, @interval, @enabled, @next_sync_ts, @updated_ts)
	`, r.dataset, syncConfigsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "interval", Value: interval},
		{Name: "enabled", Value: enabled},
		{Name: "next_sync_ts", Value: NextSync(interval, now)},
		{Name: "updated_ts", Value: now},
	}

	return runDML(ctx, q, "SaveSyncConfig")
}

// MarkSynced records a completed sync and schedules the next one.
func (r *SyncConfigRepository) MarkSynced(ctx context.Context, accountID, interval string, now time.Time) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET last_sync_ts = @last_sync_ts,
		    next_sync_ts = @next_sync_ts,
		    updated_ts = @updated_ts
		WHERE account_id = @account_id
	`, r.dataset, syncConfigsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "last_sync_ts", Value: now},
		{Name: "next_sync_ts", Value: NextSync(interval, now)},
		{Name: "updated_ts", Value: now},
		{Name: "account_id", Value: accountID},
	}

	return runDML(ctx, q, "MarkSynced")
}

// ListDue returns every enabled config whose next sync time has passed.
func (r *SyncConfigRepository) ListDue(ctx context.Context, now time.Time) ([]*SyncConfigRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			account_id,
			`+"`interval`"+`,
			enabled,
			last_sync_ts,
			next_sync_ts,
			updated_ts
		FROM %s.%s
		WHERE enabled = TRUE
		  AND next_sync_ts <= @now
		ORDER BY next_sync_ts
	`, r.dataset, syncConfigsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "now", Value: now},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDue: query read: %w", err)
	}

	var rows []*SyncConfigRow
	for {
		var row SyncConfigRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDue: iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}
