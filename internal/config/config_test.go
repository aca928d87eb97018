package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.ChatModel == "" {
		t.Errorf("expected non-empty default chat_model")
	}
	if cfg.MaxConcurrency != 5 {
		t.Errorf("expected default max_concurrency 5, got %d", cfg.MaxConcurrency)
	}
	if cfg.StrictThreshold != 1.0 || cfg.FallbackThreshold != 1.4 {
		t.Errorf("unexpected retrieval thresholds: strict=%v fallback=%v", cfg.StrictThreshold, cfg.FallbackThreshold)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.smartxdr.yml")

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.ChatModel = "claude-sonnet-4-5"
	original.MaxDailyCostUSD = 25.5
	original.SyncSkipFiles = []string{"*.lock", "*.tmp"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.ChatModel != original.ChatModel {
		t.Errorf("chat_model: got %q, want %q", loaded.ChatModel, original.ChatModel)
	}
	if loaded.MaxDailyCostUSD != original.MaxDailyCostUSD {
		t.Errorf("max_daily_cost: got %f, want %f", loaded.MaxDailyCostUSD, original.MaxDailyCostUSD)
	}
	if len(loaded.SyncSkipFiles) != len(original.SyncSkipFiles) {
		t.Errorf("sync_skip_files length: got %d, want %d", len(loaded.SyncSkipFiles), len(original.SyncSkipFiles))
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("SMARTXDR_PROVIDER", "anthropic")
	defer os.Unsetenv("SMARTXDR_PROVIDER")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderAnthropic {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderAnthropic)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChatModel = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty chat_model")
	}
}

func TestValidateNegativeConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_concurrency")
	}
}

func TestValidateNegativeCost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDailyCostUSD = -5.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_daily_cost")
	}
}

func TestValidateThresholdOrdering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictThreshold = 2.0
	cfg.FallbackThreshold = 1.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when strict_threshold exceeds fallback_threshold")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
