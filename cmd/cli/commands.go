package main

import (
	ctxpkg "context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/advisor"
	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/archive"
	"github.com/moneymaven/insights/internal/domain"
	infraBQ "github.com/moneymaven/insights/internal/infra/bigquery"
	"github.com/moneymaven/insights/internal/jobs"
	"github.com/moneymaven/insights/internal/logger"
	"github.com/moneymaven/insights/internal/provider"
	"github.com/moneymaven/insights/internal/syncer"
)

func (c *context) logger() zerolog.Logger {
	log := logger.New()
	if c.Verbose {
		log = log.Level(zerolog.DebugLevel)
	}
	return log
}

// readBatch loads a raw transaction batch from a local JSON file.
func readBatch(path string) ([]domain.ProviderTransaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("readBatch: %w", err)
	}
	var txs []domain.ProviderTransaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("readBatch: %w", err)
	}
	return txs, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *analyzeCmd) Run(ctx *context) error {
	raw, err := readBatch(a.File)
	if err != nil {
		return err
	}

	insight := analytics.BuildInsight(raw, analytics.DefaultOptions())
	return printJSON(insight)
}

func (n *nudgesCmd) Run(ctx *context) error {
	log := ctx.logger()

	raw, err := readBatch(n.File)
	if err != nil {
		return err
	}

	txs, dropped := analytics.Project(raw, analytics.DefaultRuleset())
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped malformed transactions")
	}

	bg, cancel := ctxpkg.WithTimeout(ctxpkg.Background(), 2*time.Minute)
	defer cancel()
	bg = logger.WithContext(bg, log)

	tips, err := advisor.New(advisor.NewGeminiGenerator(n.Model), log).PersonalizedTips(bg, txs)
	if err != nil {
		return err
	}
	return printJSON(tips)
}

func (s *syncCmd) Run(ctx *context) error {
	log := ctx.logger()

	bg, cancel := ctxpkg.WithTimeout(ctxpkg.Background(), 5*time.Minute)
	defer cancel()
	bg = logger.WithContext(bg, log)

	snapshots, err := infraBQ.NewSnapshotRepository(bg, s.Project, s.Dataset)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	syncLogs, err := infraBQ.NewSyncLogRepository(bg, s.Project, s.Dataset)
	if err != nil {
		return err
	}
	defer syncLogs.Close()

	rules, err := infraBQ.NewRuleRepository(bg, s.Project, s.Dataset)
	if err != nil {
		return err
	}
	defer rules.Close()

	var batchStore archive.Store
	if s.Bucket != "" {
		batchStore = archive.NewGCSStore(s.Bucket)
	}

	investec := provider.NewInvestec(s.Host, s.ClientID, s.ClientSecret, s.APIKey, log)
	svc := syncer.New(investec, batchStore, snapshots, syncLogs, nil, rules, analytics.DefaultOptions(), log)

	now := time.Now().UTC()
	job := &jobs.SyncAccountJob{
		JobID:     "cli",
		AccountID: s.Account,
		From:      now.AddDate(0, 0, -s.Days),
		To:        now,
	}
	if err := svc.SyncAccount(bg, job); err != nil {
		return err
	}

	fmt.Println("Sync completed successfully.")
	return nil
}

func (r *replayCmd) Run(ctx *context) error {
	bg, cancel := ctxpkg.WithTimeout(ctxpkg.Background(), 2*time.Minute)
	defer cancel()
	bg = logger.WithContext(bg, ctx.logger())

	// The bucket is carried in the URI itself; the store argument only
	// matters for SaveBatch.
	raw, err := archive.NewGCSStore("").FetchBatch(bg, r.URI)
	if err != nil {
		return err
	}

	insight := analytics.BuildInsight(raw, analytics.DefaultOptions())
	return printJSON(insight)
}
