package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

type SnapshotRow struct {
	SnapshotID string `bigquery:"snapshot_id"` // REQUIRED

	AccountID string `bigquery:"account_id"` // REQUIRED

	PeriodStart civil.Date `bigquery:"period_start"` // REQUIRED
	PeriodEnd   civil.Date `bigquery:"period_end"`   // REQUIRED

	Report   string `bigquery:"report"`   // REQUIRED JSON string
	Findings string `bigquery:"findings"` // REQUIRED JSON string

	DroppedRecords int64 `bigquery:"dropped_records"`

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type SyncLogRow struct {
	SyncID    string `bigquery:"sync_id"`    // REQUIRED
	AccountID string `bigquery:"account_id"` // REQUIRED

	Status string `bigquery:"status"` // RUNNING | SUCCESS | FAILED

	FetchedCount  int64 `bigquery:"fetched_count"`
	DroppedCount  int64 `bigquery:"dropped_count"`
	FindingsCount int64 `bigquery:"findings_count"`

	ErrorMessage bigquery.NullString `bigquery:"error_message"` // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE
}

type SyncConfigRow struct {
	AccountID string `bigquery:"account_id"` // REQUIRED

	Interval string `bigquery:"interval"` // EVERY_6_HOURS | DAILY | WEEKLY
	Enabled  bool   `bigquery:"enabled"`

	LastSyncTS bigquery.NullTimestamp `bigquery:"last_sync_ts"` // NULLABLE
	NextSyncTS time.Time              `bigquery:"next_sync_ts"` // REQUIRED

	UpdatedTS time.Time `bigquery:"updated_ts"` // REQUIRED
}

type RuleRow struct {
	Category string   `bigquery:"category"` // REQUIRED
	Keywords []string `bigquery:"keywords"` // REPEATED STRING

	Position int64 `bigquery:"position"` // rule order, significant
	IsActive bool  `bigquery:"is_active"`
}
