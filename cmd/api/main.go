package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moneymaven/insights/internal/advisor"
	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/api/handlers"
	"github.com/moneymaven/insights/internal/api/middleware"
	"github.com/moneymaven/insights/internal/archive"
	"github.com/moneymaven/insights/internal/config"
	infraBQ "github.com/moneymaven/insights/internal/infra/bigquery"
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

	ctx := context.Background()

	// Initialize repositories
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

	// Banking provider and AI advisor
	investec := provider.NewInvestec(cfg.Provider.Host, cfg.Provider.ClientID, cfg.Provider.ClientSecret, cfg.Provider.APIKey, log)
	tips := advisor.New(advisor.NewGeminiGenerator(cfg.Advisor.Model), log)

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

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, cfg.Worker.Workers, jobStore)

	syncService := syncer.New(investec, batchStore, snapshots, syncLogs, syncConfigs, rules, opts, log)

	// Start worker in background to process sync jobs
	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, syncService.Handler()); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	accountsHandler := handlers.NewAccountsHandler(investec, log)
	insightsHandler := handlers.NewInsightsHandler(investec, snapshots, rules, opts, log)
	nudgesHandler := handlers.NewNudgesHandler(investec, tips, rules, opts, log)
	syncHandler := handlers.NewSyncHandler(syncConfigs, syncLogs, jobQueue, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			accountsHandler.ListAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			accountsHandler.GetBalance(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.GetInsights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.GetHistory(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.GetLatest(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/breakdown", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.GetBreakdown(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/nudges", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			nudgesHandler.PostNudges(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.TriggerSync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			syncHandler.GetConfig(w, r)
		case http.MethodPut:
			syncHandler.PutConfig(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync/logs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			syncHandler.GetLogs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(cfg.API.AuthToken)(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
