package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberfortress-labs/smartxdr-core/internal/alerts"
	"github.com/cyberfortress-labs/smartxdr-core/internal/logstore"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

var (
	alertsWindowMinutes int
	alertsSourceIP      string
)

var alertsCmd = &cobra.Command{
	Use:   "summarize-alerts",
	Short: "Group and risk-score recent classified log alerts",
	Long:  `Pulls ML-classified log entries from the configured log store, groups them by source IP/pattern/severity, scores aggregate risk, and prints the digest.`,
	RunE:  runSummarizeAlerts,
}

func init() {
	alertsCmd.Flags().IntVar(&alertsWindowMinutes, "window", 0, "time window in minutes (defaults to config's alert_time_window)")
	alertsCmd.Flags().StringVar(&alertsSourceIP, "source-ip", "", "restrict to a single source IP")
	rootCmd.AddCommand(alertsCmd)
}

func runSummarizeAlerts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	logs := logstore.NewHTTPAdapter(httpClient, cfg.LogStoreURL, cfg.LogStoreUsername, cfg.LogStorePassword, cfg.LogStoreIndexPattern)

	prompts, err := promptbuilder.Load(cfg.PromptDir)
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	prompts.RegisterDefaults()

	var ragPipeline alerts.RAGQuerier
	if cfg.AlertAIAnalysisEnabled {
		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		repo, err := store.NewChromemRepository(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}
		if cfg.ChromaDBPath != "" {
			_ = repo.Load(ctx, cfg.ChromaDBPath)
		}
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		limiter := ratelimit.New(cfg.MaxCallsPerMinute, cfg.MaxDailyCostUSD)
		ragPipeline = rag.New(repo, provider, rerank.NewDistanceReranker(), limiter, prompts, nil, nil, rag.FromAppConfig(cfg))
	}

	var audit *alerts.AuditLog
	if cfg.AlertAuditDBPath != "" {
		audit, err = alerts.OpenAuditLog(cfg.AlertAuditDBPath)
		if err != nil {
			return fmt.Errorf("opening alert audit log: %w", err)
		}
		defer audit.Close()
	}

	summarizer := alerts.New(logs, ragPipeline, prompts, audit, alerts.Config{
		DefaultWindowMinutes: cfg.AlertTimeWindowMinutes,
		MinProbability:       cfg.AlertMinProbability,
		WhitelistIPs:         cfg.WhitelistIPQuery,
		EnableVisualization:  cfg.AlertVisualizationEnabled,
		EnableAIAnalysis:     cfg.AlertAIAnalysisEnabled,
	})

	windowMinutes := alertsWindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = cfg.AlertTimeWindowMinutes
	}

	digest, err := summarizer.Summarize(ctx, windowMinutes, alertsSourceIP, cfg.LogStoreIndexPattern)
	if err != nil {
		return fmt.Errorf("summarize-alerts failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(digest)
}
