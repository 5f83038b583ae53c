package config

import (
	"os"
	"testing"
	"time"

	"github.com/moneymaven/insights/internal/crypto"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("API_AUTH_TOKEN", "test-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Provider.Host != "https://openapi.investec.com" {
		t.Errorf("Provider.Host = %q", cfg.Provider.Host)
	}
	if cfg.Analytics.SubscriptionCount != 3 {
		t.Errorf("SubscriptionCount = %d, want 3", cfg.Analytics.SubscriptionCount)
	}
	if cfg.Analytics.SavingsWindow != 48*time.Hour {
		t.Errorf("SavingsWindow = %v, want 48h", cfg.Analytics.SavingsWindow)
	}
	if cfg.Worker.Workers != 3 {
		t.Errorf("Worker.Workers = %d, want 3", cfg.Worker.Workers)
	}
	if cfg.Advisor.Model != "gemini-2.5-flash" {
		t.Errorf("Advisor.Model = %q", cfg.Advisor.Model)
	}
}

func TestLoad_MissingAuthToken(t *testing.T) {
	t.Setenv("API_AUTH_TOKEN", "")
	os.Unsetenv("API_AUTH_TOKEN")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for missing API_AUTH_TOKEN, got nil")
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ANALYTICS_SUBSCRIPTION_COUNT", "lots")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid ANALYTICS_SUBSCRIPTION_COUNT, got nil")
	}
}

func TestLoad_InvalidWindow(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ANALYTICS_CLUSTER_WINDOW", "three hours")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid ANALYTICS_CLUSTER_WINDOW, got nil")
	}
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ANALYTICS_SALARY_FLOOR", "25000")
	t.Setenv("ANALYTICS_CLUSTER_WINDOW", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	th := cfg.Analytics.Thresholds()
	if th.SalaryFloor != 25000 {
		t.Errorf("SalaryFloor = %v, want 25000", th.SalaryFloor)
	}
	if th.ClusterWindow != 90*time.Minute {
		t.Errorf("ClusterWindow = %v, want 90m", th.ClusterWindow)
	}
}

func TestLoad_SealedCredential(t *testing.T) {
	setRequiredEnvVars(t)

	key, err := crypto.NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey: %v", err)
	}
	sig, err := crypto.NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey: %v", err)
	}

	sealed, err := crypto.Seal([]byte("super-secret"), key, sig)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	t.Setenv("SECRET_KEY", key)
	t.Setenv("SECRET_SIG", sig)
	t.Setenv("PROVIDER_CLIENT_SECRET", "enc:"+sealed)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider.ClientSecret != "super-secret" {
		t.Errorf("ClientSecret = %q, want decrypted value", cfg.Provider.ClientSecret)
	}
}

func TestLoad_SealedCredentialWithoutKeys(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PROVIDER_CLIENT_SECRET", "enc:abc.def")
	os.Unsetenv("SECRET_KEY")
	os.Unsetenv("SECRET_SIG")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for sealed value without keys, got nil")
	}
}

func TestLoad_PlainCredentialPassesThrough(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PROVIDER_CLIENT_SECRET", "plain-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider.ClientSecret != "plain-secret" {
		t.Errorf("ClientSecret = %q, want plain-secret", cfg.Provider.ClientSecret)
	}
}
