package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/domain"
	"github.com/moneymaven/insights/internal/jobs"
)

type mockProvider struct {
	transactions []domain.ProviderTransaction
	err          error
}

func (m *mockProvider) Accounts(context.Context) ([]domain.Account, error) { return nil, nil }

func (m *mockProvider) Transactions(context.Context, string, time.Time, time.Time) ([]domain.ProviderTransaction, error) {
	return m.transactions, m.err
}

func (m *mockProvider) Balance(context.Context, string) (*domain.Balance, error) { return nil, nil }

type mockArchive struct {
	uri   string
	err   error
	saved int
}

func (m *mockArchive) SaveBatch(context.Context, string, []domain.ProviderTransaction) (string, error) {
	m.saved++
	return m.uri, m.err
}

func (m *mockArchive) FetchBatch(context.Context, string) ([]domain.ProviderTransaction, error) {
	return nil, nil
}

type mockSnapshots struct {
	err      error
	inserted []domain.Insight
}

func (m *mockSnapshots) InsertSnapshot(_ context.Context, _ string, _, _ time.Time, insight domain.Insight) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.inserted = append(m.inserted, insight)
	return "snap-1", nil
}

type mockSyncLogs struct {
	startErr  error
	succeeded []string
	failed    []string
}

func (m *mockSyncLogs) StartSync(context.Context, string) (string, error) {
	return "sync-1", m.startErr
}

func (m *mockSyncLogs) MarkSyncSucceeded(_ context.Context, syncID string, _, _, _ int) error {
	m.succeeded = append(m.succeeded, syncID)
	return nil
}

func (m *mockSyncLogs) MarkSyncFailed(_ context.Context, syncID string, _ error) error {
	m.failed = append(m.failed, syncID)
	return nil
}

type mockConfigs struct {
	marked []string
}

func (m *mockConfigs) MarkSynced(_ context.Context, accountID, interval string, _ time.Time) error {
	m.marked = append(m.marked, accountID+"/"+interval)
	return nil
}

func sampleRaw() []domain.ProviderTransaction {
	return []domain.ProviderTransaction{
		{
			UUID:            "t1",
			AccountID:       "acc-1",
			Description:     "CHECKERS SANDTON",
			Amount:          -450.50,
			Type:            domain.Debit,
			TransactionType: domain.TypeCardPurchases,
			TransactionDate: "2025-03-03",
		},
	}
}

func syncJob() *jobs.SyncAccountJob {
	return &jobs.SyncAccountJob{
		JobID:     "job-1",
		AccountID: "acc-1",
		From:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Interval:  "DAILY",
	}
}

func TestService_SyncAccount(t *testing.T) {
	arch := &mockArchive{uri: "gs://bucket/raw/acc-1/b.json"}
	snaps := &mockSnapshots{}
	logs := &mockSyncLogs{}
	configs := &mockConfigs{}
	svc := New(&mockProvider{transactions: sampleRaw()}, arch, snaps, logs, configs, nil, analytics.DefaultOptions(), zerolog.Nop())

	if err := svc.SyncAccount(context.Background(), syncJob()); err != nil {
		t.Fatalf("SyncAccount: %v", err)
	}

	if arch.saved != 1 {
		t.Errorf("archived %d batches, want 1", arch.saved)
	}
	if len(snaps.inserted) != 1 {
		t.Fatalf("inserted %d snapshots, want 1", len(snaps.inserted))
	}
	if got := snaps.inserted[0].Report.Summary.TotalSpent; got != 450.50 {
		t.Errorf("TotalSpent = %v, want 450.50", got)
	}
	if len(logs.succeeded) != 1 || logs.succeeded[0] != "sync-1" {
		t.Errorf("succeeded = %v", logs.succeeded)
	}
	if len(configs.marked) != 1 || configs.marked[0] != "acc-1/DAILY" {
		t.Errorf("marked = %v", configs.marked)
	}
}

func TestService_ProviderFailureRecorded(t *testing.T) {
	logs := &mockSyncLogs{}
	svc := New(&mockProvider{err: errors.New("provider down")}, nil, &mockSnapshots{}, logs, nil, nil, analytics.DefaultOptions(), zerolog.Nop())

	err := svc.SyncAccount(context.Background(), syncJob())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(logs.failed) != 1 {
		t.Errorf("failed = %v, want one failed sync log", logs.failed)
	}
	if len(logs.succeeded) != 0 {
		t.Errorf("succeeded = %v, want none", logs.succeeded)
	}
}

func TestService_ArchiveFailureIsNotFatal(t *testing.T) {
	arch := &mockArchive{err: errors.New("bucket gone")}
	snaps := &mockSnapshots{}
	logs := &mockSyncLogs{}
	svc := New(&mockProvider{transactions: sampleRaw()}, arch, snaps, logs, nil, nil, analytics.DefaultOptions(), zerolog.Nop())

	if err := svc.SyncAccount(context.Background(), syncJob()); err != nil {
		t.Fatalf("SyncAccount: %v", err)
	}
	if len(snaps.inserted) != 1 {
		t.Errorf("inserted = %d, want snapshot despite archive failure", len(snaps.inserted))
	}
	if len(logs.succeeded) != 1 {
		t.Errorf("succeeded = %v", logs.succeeded)
	}
}

func TestService_SnapshotFailureRecorded(t *testing.T) {
	logs := &mockSyncLogs{}
	svc := New(&mockProvider{transactions: sampleRaw()}, nil, &mockSnapshots{err: errors.New("insert failed")}, logs, nil, nil, analytics.DefaultOptions(), zerolog.Nop())

	if err := svc.SyncAccount(context.Background(), syncJob()); err == nil {
		t.Fatal("expected error")
	}
	if len(logs.failed) != 1 {
		t.Errorf("failed = %v, want one failed sync log", logs.failed)
	}
}

func TestService_OneOffSkipsSchedule(t *testing.T) {
	configs := &mockConfigs{}
	svc := New(&mockProvider{transactions: sampleRaw()}, nil, &mockSnapshots{}, &mockSyncLogs{}, configs, nil, analytics.DefaultOptions(), zerolog.Nop())

	job := syncJob()
	job.Interval = ""
	if err := svc.SyncAccount(context.Background(), job); err != nil {
		t.Fatalf("SyncAccount: %v", err)
	}
	if len(configs.marked) != 0 {
		t.Errorf("marked = %v, want schedule untouched for one-off sync", configs.marked)
	}
}

func TestService_HandlerRejectsUnknownJob(t *testing.T) {
	svc := New(&mockProvider{}, nil, &mockSnapshots{}, &mockSyncLogs{}, nil, nil, analytics.DefaultOptions(), zerolog.Nop())

	if err := svc.Handler()(context.Background(), fakeJob{}); err == nil {
		t.Error("expected unknown job type to error")
	}
}

type fakeJob struct{}

func (fakeJob) GetID() string             { return "x" }
func (fakeJob) GetType() jobs.JobType     { return "reindex" }
func (fakeJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }
