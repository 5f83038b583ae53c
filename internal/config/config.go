package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/moneymaven/insights/internal/analytics"
	"github.com/moneymaven/insights/internal/crypto"
)

// sealedPrefix marks a credential value that is encrypted at rest and must
// be opened with the configured secret keys before use.
const sealedPrefix = "enc:"

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Provider  ProviderConfig
	Google    GoogleConfig
	Advisor   AdvisorConfig
	Analytics AnalyticsConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type APIConfig struct {
	// AuthToken is the bearer token API clients must present.
	AuthToken string
}

type ProviderConfig struct {
	Host         string
	ClientID     string
	ClientSecret string
	APIKey       string
}

type GoogleConfig struct {
	ProjectID string
	Dataset   string
	Bucket    string
}

type AdvisorConfig struct {
	Model string
}

type AnalyticsConfig struct {
	SubscriptionCount int
	ClusterPairs      int
	ClusterWindow     time.Duration
	SalaryFloor       float64
	SavingsWindow     time.Duration
	RecurringMinCount int
}

// Thresholds converts the configured limits into the form the detectors take.
func (a AnalyticsConfig) Thresholds() analytics.Thresholds {
	return analytics.Thresholds{
		SubscriptionCount: a.SubscriptionCount,
		ClusterPairs:      a.ClusterPairs,
		ClusterWindow:     a.ClusterWindow,
		SalaryFloor:       a.SalaryFloor,
		SavingsWindow:     a.SavingsWindow,
	}
}

type WorkerConfig struct {
	Workers      int
	QueueSize    int
	PollInterval time.Duration
}

func Load() (*Config, error) {
	subCount, err := strconv.Atoi(getEnv("ANALYTICS_SUBSCRIPTION_COUNT", strconv.Itoa(analytics.DefaultSubscriptionCount)))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_SUBSCRIPTION_COUNT: %w", err)
	}
	clusterPairs, err := strconv.Atoi(getEnv("ANALYTICS_CLUSTER_PAIRS", strconv.Itoa(analytics.DefaultClusterPairs)))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_CLUSTER_PAIRS: %w", err)
	}
	clusterWindow, err := time.ParseDuration(getEnv("ANALYTICS_CLUSTER_WINDOW", "3h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_CLUSTER_WINDOW: %w", err)
	}
	salaryFloor, err := strconv.ParseFloat(getEnv("ANALYTICS_SALARY_FLOOR", "10000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_SALARY_FLOOR: %w", err)
	}
	savingsWindow, err := time.ParseDuration(getEnv("ANALYTICS_SAVINGS_WINDOW", "48h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_SAVINGS_WINDOW: %w", err)
	}
	recurringMin, err := strconv.Atoi(getEnv("ANALYTICS_RECURRING_MIN_COUNT", strconv.Itoa(analytics.DefaultRecurringMinCount)))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_RECURRING_MIN_COUNT: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("WORKER_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_QUEUE_SIZE: %w", err)
	}
	pollInterval, err := time.ParseDuration(getEnv("WORKER_POLL_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_POLL_INTERVAL: %w", err)
	}

	clientSecret, err := openSealed(getEnv("PROVIDER_CLIENT_SECRET", ""))
	if err != nil {
		return nil, fmt.Errorf("PROVIDER_CLIENT_SECRET: %w", err)
	}
	apiKey, err := openSealed(getEnv("PROVIDER_API_KEY", ""))
	if err != nil {
		return nil, fmt.Errorf("PROVIDER_API_KEY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		API: APIConfig{
			AuthToken: getEnv("API_AUTH_TOKEN", ""),
		},
		Provider: ProviderConfig{
			Host:         getEnv("PROVIDER_HOST", "https://openapi.investec.com"),
			ClientID:     getEnv("PROVIDER_CLIENT_ID", ""),
			ClientSecret: clientSecret,
			APIKey:       apiKey,
		},
		Google: GoogleConfig{
			ProjectID: getEnv("GOOGLE_PROJECT_ID", ""),
			Dataset:   getEnv("BIGQUERY_DATASET", "insights"),
			Bucket:    getEnv("GCS_BUCKET", ""),
		},
		Advisor: AdvisorConfig{
			Model: getEnv("ADVISOR_MODEL", "gemini-2.5-flash"),
		},
		Analytics: AnalyticsConfig{
			SubscriptionCount: subCount,
			ClusterPairs:      clusterPairs,
			ClusterWindow:     clusterWindow,
			SalaryFloor:       salaryFloor,
			SavingsWindow:     savingsWindow,
			RecurringMinCount: recurringMin,
		},
		Worker: WorkerConfig{
			Workers:      workers,
			QueueSize:    queueSize,
			PollInterval: pollInterval,
		},
	}

	if cfg.API.AuthToken == "" {
		return nil, fmt.Errorf("API_AUTH_TOKEN is required")
	}

	return cfg, nil
}

// openSealed decrypts an "enc:" prefixed value using SECRET_KEY/SECRET_SIG.
// Plain values pass through untouched so local setups can skip sealing.
func openSealed(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}

	key := os.Getenv("SECRET_KEY")
	sig := os.Getenv("SECRET_SIG")
	if key == "" || sig == "" {
		return "", fmt.Errorf("sealed value requires SECRET_KEY and SECRET_SIG")
	}

	plain, err := crypto.Open(strings.TrimPrefix(value, sealedPrefix), key, sig)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
