package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/archive"
	"github.com/moneymaven/insights/internal/config"
	infraBQ "github.com/moneymaven/insights/internal/infra/bigquery"
	"github.com/moneymaven/insights/internal/jobs"
	"github.com/moneymaven/insights/internal/jobs/inmemory"
	"github.com/moneymaven/insights/internal/logger"
	"github.com/moneymaven/insights/internal/provider"
	"github.com/moneymaven/insights/internal/syncer"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	snapshots, err := infraBQ.NewSnapshotRepository(ctx, cfg.Google.ProjectID, cfg.Google.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create snapshot repository")
	}
	defer snapshots.Close()

	syncLogs, err := infraBQ.NewSyncLogRepository(ctx, cfg.Google.ProjectID, cfg.Google.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sync log repository")
	}
	defer syncLogs.Close()

	syncConfigs, err := infraBQ.NewSyncConfigRepository(ctx, cfg.Google.ProjectID, cfg.Google.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sync config repository")
	}
	defer syncConfigs.Close()

	rules, err := infraBQ.NewRuleRepository(ctx, cfg.Google.ProjectID, cfg.Google.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create rule repository")
	}
	defer rules.Close()

	investec := provider.NewInvestec(cfg.Provider.Host, cfg.Provider.ClientID, cfg.Provider.ClientSecret, cfg.Provider.APIKey, log)

	var batchStore archive.Store
	if cfg.Google.Bucket != "" {
		batchStore = archive.NewGCSStore(cfg.Google.Bucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - raw batch archival disabled")
	}

	opts := analytics.Options{
		Rules:             analytics.DefaultRuleset(),
		Thresholds:        cfg.Analytics.Thresholds(),
		RecurringMinCount: cfg.Analytics.RecurringMinCount,
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, cfg.Worker.Workers, jobStore)

	syncService := syncer.New(investec, batchStore, snapshots, syncLogs, syncConfigs, rules, opts, log)

	log.Info().Msg("Starting worker service")

	if err := jobQueue.Start(ctx, syncService.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	// Scan for due sync configs on a fixed interval and enqueue a job for
	// each. The queue deduplicates nothing; MarkSynced pushes next_sync_ts
	// forward only after a successful run, so a failed sync is retried on
	// the next scan.
	go func() {
		ticker := time.NewTicker(cfg.Worker.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				enqueueDue(ctx, syncConfigs, jobQueue, log)
			}
		}
	}()

	log.Info().
		Dur("poll_interval", cfg.Worker.PollInterval).
		Msg("Worker service started, scanning for due syncs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// enqueueDue publishes a sync job for every account whose schedule has come
// due. The fetch window starts at the last successful sync, or 30 days back
// for accounts that have never synced.
func enqueueDue(ctx context.Context, configs *infraBQ.SyncConfigRepository, publisher jobs.Publisher, log zerolog.Logger) {
	now := time.Now().UTC()

	due, err := configs.ListDue(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list due sync configs")
		return
	}
	if len(due) == 0 {
		return
	}

	for _, cfg := range due {
		from := now.AddDate(0, 0, -30)
		if cfg.LastSyncTS.Valid {
			from = cfg.LastSyncTS.Timestamp
		}

		job := &jobs.SyncAccountJob{
			AccountID: cfg.AccountID,
			From:      from,
			To:        now,
			Interval:  cfg.Interval,
		}
		if err := publisher.PublishSyncAccount(ctx, job); err != nil {
			log.Error().Err(err).Str("account_id", cfg.AccountID).Msg("Failed to enqueue sync job")
			continue
		}
		log.Info().
			Str("job_id", job.JobID).
			Str("account_id", cfg.AccountID).
			Str("interval", cfg.Interval).
			Msg("Enqueued scheduled sync")
	}
}
