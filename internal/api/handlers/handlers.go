package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/advisor"
	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/api/middleware"
	"github.com/moneymaven/insights/internal/domain"
	bq "github.com/moneymaven/insights/internal/infra/bigquery"
	"github.com/moneymaven/insights/internal/jobs"
	"github.com/moneymaven/insights/internal/provider"
)

const defaultRangeDays = 30

// SnapshotStore persists computed insights and reads them back for the
// history endpoints. Persistence is best-effort for the insight endpoint:
// a storage failure never fails that request.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, accountID string, from, to time.Time, insight domain.Insight) (string, error)
	LatestSnapshot(ctx context.Context, accountID string) (*bq.SnapshotRow, error)
	ListSnapshots(ctx context.Context, accountID string, limit int) ([]*bq.SnapshotRow, error)
}

// SyncLogStore reads recent sync run outcomes.
type SyncLogStore interface {
	ListRecent(ctx context.Context, limit int) ([]*bq.SyncLogRow, error)
}

// SyncConfigStore reads and writes per-account sync schedules.
type SyncConfigStore interface {
	GetSyncConfig(ctx context.Context, accountID string) (*bq.SyncConfigRow, error)
	SaveSyncConfig(ctx context.Context, accountID, interval string, enabled bool) error
}

// RuleSource supplies the active categorization rules.
type RuleSource interface {
	ActiveRuleset(ctx context.Context) (analytics.Ruleset, error)
}

// TipsAdvisor turns a projected batch into personalized tips.
type TipsAdvisor interface {
	PersonalizedTips(ctx context.Context, txs []domain.AnalyticsTransaction) (*domain.TipsResponse, error)
}

// parseRange extracts account_id and the from/to date range from the query,
// defaulting to the last 30 days.
func parseRange(r *http.Request) (accountID string, from, to time.Time, err error) {
	query := r.URL.Query()

	accountID = query.Get("account_id")
	if accountID == "" {
		return "", time.Time{}, time.Time{}, errors.New("account_id is required")
	}

	to = time.Now().UTC()
	from = to.AddDate(0, 0, -defaultRangeDays)

	if s := query.Get("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			return "", time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
	}
	if s := query.Get("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			return "", time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
	}
	return accountID, from, to, nil
}

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	provider provider.Client
	log      zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(p provider.Client, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{provider: p, log: log}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.provider.Accounts(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to list accounts")
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// GetBalance handles GET /api/accounts/balance?account_id
func (h *AccountsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	balance, err := h.provider.Balance(ctx, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to fetch balance")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, balance)
}

// InsightsHandler handles insight endpoints.
type InsightsHandler struct {
	provider  provider.Client
	snapshots SnapshotStore
	rules     RuleSource
	opts      analytics.Options
	log       zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. snapshots and rules may
// be nil: snapshots disables persistence, rules falls back to the compiled-in
// ruleset.
func NewInsightsHandler(p provider.Client, snapshots SnapshotStore, rules RuleSource, opts analytics.Options, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		provider:  p,
		snapshots: snapshots,
		rules:     rules,
		opts:      opts,
		log:       log,
	}
}

func (h *InsightsHandler) options(ctx context.Context) analytics.Options {
	opts := h.opts
	if h.rules != nil {
		rules, err := h.rules.ActiveRuleset(ctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to load rules, using compiled-in default")
		} else {
			opts.Rules = rules
		}
	}
	return opts
}

// GetInsights handles GET /api/insights?account_id&from&to
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, from, to, err := parseRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.provider.Transactions(ctx, accountID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to fetch transactions")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch transactions")
		return
	}

	insight := analytics.BuildInsight(raw, h.options(ctx))
	if insight.DroppedRecords > 0 {
		h.log.Warn().
			Str("account_id", accountID).
			Int("dropped", insight.DroppedRecords).
			Msg("Dropped malformed transactions")
	}

	if h.snapshots != nil {
		if _, err := h.snapshots.InsertSnapshot(ctx, accountID, from, to, insight); err != nil {
			h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to persist snapshot")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, insight)
}

// GetBreakdown handles GET /api/insights/breakdown?account_id&from&to
func (h *InsightsHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, from, to, err := parseRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.provider.Transactions(ctx, accountID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to fetch transactions")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch transactions")
		return
	}

	opts := h.options(ctx)
	txs, _ := analytics.Project(raw, opts.Rules)
	report := analytics.Aggregate(txs, analytics.AggregateOptions{RecurringMinCount: opts.RecurringMinCount})
	breakdown := analytics.BuildCategoryBreakdown(report.ByCategory)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"breakdown": breakdown,
		"summary":   report.Summary,
	})
}

// GetHistory handles GET /api/insights/history?account_id&limit
func (h *InsightsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if h.snapshots == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Snapshot storage not configured")
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	rows, err := h.snapshots.ListSnapshots(ctx, accountID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to list snapshots")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	if rows == nil {
		rows = []*bq.SnapshotRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": rows,
		"count":     len(rows),
	})
}

// GetLatest handles GET /api/insights/latest?account_id
func (h *InsightsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if h.snapshots == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Snapshot storage not configured")
		return
	}

	row, err := h.snapshots.LatestSnapshot(ctx, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load latest snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load latest snapshot")
		return
	}
	if row == nil {
		middleware.WriteError(w, http.StatusNotFound, "No snapshots for account")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, row)
}

// NudgesHandler handles AI nudge endpoints.
type NudgesHandler struct {
	provider provider.Client
	advisor  TipsAdvisor
	rules    RuleSource
	opts     analytics.Options
	log      zerolog.Logger
}

// NewNudgesHandler creates a new nudges handler.
func NewNudgesHandler(p provider.Client, adv TipsAdvisor, rules RuleSource, opts analytics.Options, log zerolog.Logger) *NudgesHandler {
	return &NudgesHandler{
		provider: p,
		advisor:  adv,
		rules:    rules,
		opts:     opts,
		log:      log,
	}
}

// PostNudges handles POST /api/nudges
func (h *NudgesHandler) PostNudges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		AccountID string `json:"account_id"`
		From      string `json:"from"`
		To        string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -defaultRangeDays)
	var err error
	if req.From != "" {
		if from, err = time.Parse("2006-01-02", req.From); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
	}
	if req.To != "" {
		if to, err = time.Parse("2006-01-02", req.To); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
	}

	raw, err := h.provider.Transactions(ctx, req.AccountID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Failed to fetch transactions")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch transactions")
		return
	}

	opts := h.opts
	if h.rules != nil {
		if rules, rerr := h.rules.ActiveRuleset(ctx); rerr == nil {
			opts.Rules = rules
		}
	}
	txs, _ := analytics.Project(raw, opts.Rules)
	if len(txs) == 0 {
		middleware.WriteError(w, http.StatusUnprocessableEntity, "No transactions to analyse")
		return
	}

	tips, err := h.advisor.PersonalizedTips(ctx, txs)
	if err != nil {
		var malformed *advisor.MalformedTipsError
		if errors.As(err, &malformed) {
			h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Advisor returned malformed tips")
			middleware.WriteError(w, http.StatusBadGateway, "AI response invalid: "+malformed.Reason)
			return
		}
		h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Failed to generate tips")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to generate tips")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tips)
}

// SyncHandler handles sync config, log and trigger endpoints.
type SyncHandler struct {
	configs   SyncConfigStore
	syncLogs  SyncLogStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(configs SyncConfigStore, syncLogs SyncLogStore, publisher jobs.Publisher, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		configs:   configs,
		syncLogs:  syncLogs,
		publisher: publisher,
		log:       log,
	}
}

// GetConfig handles GET /api/sync/config?account_id
func (h *SyncHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	cfg, err := h.configs.GetSyncConfig(ctx, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to get sync config")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get sync config")
		return
	}
	if cfg == nil {
		middleware.WriteError(w, http.StatusNotFound, "No sync config for account")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, cfg)
}

// PutConfig handles PUT /api/sync/config
func (h *SyncHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		AccountID string `json:"account_id"`
		Interval  string `json:"interval"`
		Enabled   bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if !bq.ValidInterval(req.Interval) {
		middleware.WriteError(w, http.StatusBadRequest, "interval must be EVERY_6_HOURS, DAILY or WEEKLY")
		return
	}

	if err := h.configs.SaveSyncConfig(ctx, req.AccountID, req.Interval, req.Enabled); err != nil {
		h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Failed to save sync config")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save sync config")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetLogs handles GET /api/sync/logs
func (h *SyncHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	logs, err := h.syncLogs.ListRecent(ctx, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sync logs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list sync logs")
		return
	}

	if logs == nil {
		logs = []*bq.SyncLogRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// TriggerSync handles POST /api/sync
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		AccountID string `json:"account_id"`
		From      string `json:"from"`
		To        string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -defaultRangeDays)
	var err error
	if req.From != "" {
		if from, err = time.Parse("2006-01-02", req.From); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
	}
	if req.To != "" {
		if to, err = time.Parse("2006-01-02", req.To); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
	}

	job := &jobs.SyncAccountJob{
		AccountID: req.AccountID,
		From:      from,
		To:        to,
	}
	if err := h.publisher.PublishSyncAccount(ctx, job); err != nil {
		h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Failed to enqueue sync job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue sync job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("account_id", req.AccountID).Msg("Sync job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.JobID,
		"account_id": req.AccountID,
		"status":     string(job.Status),
	})
}
