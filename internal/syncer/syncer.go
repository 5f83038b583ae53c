// Package syncer runs the full sync pipeline for one account: fetch raw
// transactions from the provider, archive the batch, rebuild the insight
// snapshot and record the run in the sync log. The API trigger, the
// scheduled worker and the CLI all drive the same Service.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/archive"
	"github.com/moneymaven/insights/internal/domain"
	"github.com/moneymaven/insights/internal/jobs"
	"github.com/moneymaven/insights/internal/provider"
)

// SnapshotStore persists computed insights.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, accountID string, from, to time.Time, insight domain.Insight) (string, error)
}

// SyncLogStore records sync run lifecycle events.
type SyncLogStore interface {
	StartSync(ctx context.Context, accountID string) (string, error)
	MarkSyncSucceeded(ctx context.Context, syncID string, fetched, dropped, findings int) error
	MarkSyncFailed(ctx context.Context, syncID string, syncErr error) error
}

// ConfigStore advances the sync schedule after a successful run.
type ConfigStore interface {
	MarkSynced(ctx context.Context, accountID, interval string, now time.Time) error
}

// RuleSource supplies the active categorization rules.
type RuleSource interface {
	ActiveRuleset(ctx context.Context) (analytics.Ruleset, error)
}

// Service executes sync jobs end to end.
type Service struct {
	provider  provider.Client
	archive   archive.Store
	snapshots SnapshotStore
	syncLogs  SyncLogStore
	configs   ConfigStore
	rules     RuleSource
	opts      analytics.Options
	log       zerolog.Logger
}

// New creates a sync service. archive, configs and rules may be nil:
// a nil archive skips raw batch archival, a nil configs skips schedule
// bookkeeping and a nil rules falls back to the compiled-in ruleset.
func New(p provider.Client, arch archive.Store, snapshots SnapshotStore, syncLogs SyncLogStore, configs ConfigStore, rules RuleSource, opts analytics.Options, log zerolog.Logger) *Service {
	return &Service{
		provider:  p,
		archive:   arch,
		snapshots: snapshots,
		syncLogs:  syncLogs,
		configs:   configs,
		rules:     rules,
		opts:      opts,
		log:       log,
	}
}

// SyncAccount runs the pipeline for a single job. Every run gets a sync log
// row; failures after StartSync are recorded there before returning.
func (s *Service) SyncAccount(ctx context.Context, job *jobs.SyncAccountJob) error {
	log := s.log.With().
		Str("job_id", job.JobID).
		Str("account_id", job.AccountID).
		Logger()

	syncID, err := s.syncLogs.StartSync(ctx, job.AccountID)
	if err != nil {
		return fmt.Errorf("SyncAccount: %w", err)
	}

	raw, err := s.provider.Transactions(ctx, job.AccountID, job.From, job.To)
	if err != nil {
		s.fail(ctx, syncID, err)
		return fmt.Errorf("SyncAccount: %w", err)
	}
	log.Info().Int("fetched", len(raw)).Msg("Fetched transactions")

	if s.archive != nil && len(raw) > 0 {
		uri, err := s.archive.SaveBatch(ctx, job.AccountID, raw)
		if err != nil {
			// Archival is durability, not correctness. The run continues.
			log.Warn().Err(err).Msg("Failed to archive raw batch")
		} else {
			log.Info().Str("uri", uri).Msg("Archived raw batch")
		}
	}

	opts := s.opts
	if s.rules != nil {
		rules, err := s.rules.ActiveRuleset(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load rules, using compiled-in default")
		} else {
			opts.Rules = rules
		}
	}

	insight := analytics.BuildInsight(raw, opts)

	if _, err := s.snapshots.InsertSnapshot(ctx, job.AccountID, job.From, job.To, insight); err != nil {
		s.fail(ctx, syncID, err)
		return fmt.Errorf("SyncAccount: %w", err)
	}

	if err := s.syncLogs.MarkSyncSucceeded(ctx, syncID, len(raw), insight.DroppedRecords, len(insight.Findings)); err != nil {
		log.Error().Err(err).Msg("Failed to mark sync succeeded")
	}

	if s.configs != nil && job.Interval != "" {
		if err := s.configs.MarkSynced(ctx, job.AccountID, job.Interval, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("Failed to advance sync schedule")
		}
	}

	log.Info().
		Str("sync_id", syncID).
		Int("fetched", len(raw)).
		Int("dropped", insight.DroppedRecords).
		Int("findings", len(insight.Findings)).
		Msg("Sync completed")
	return nil
}

// Handler adapts the service to the job queue.
func (s *Service) Handler() jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		syncJob, ok := job.(*jobs.SyncAccountJob)
		if !ok {
			return fmt.Errorf("unexpected job type %q", job.GetType())
		}
		return s.SyncAccount(ctx, syncJob)
	}
}

func (s *Service) fail(ctx context.Context, syncID string, cause error) {
	if err := s.syncLogs.MarkSyncFailed(ctx, syncID, cause); err != nil {
		s.log.Error().Err(err).Str("sync_id", syncID).Msg("Failed to mark sync failed")
	}
}
