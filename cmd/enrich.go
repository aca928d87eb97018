package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberfortress-labs/smartxdr-core/internal/analyzer"
	"github.com/cyberfortress-labs/smartxdr-core/internal/caseadapter"
	"github.com/cyberfortress-labs/smartxdr-core/internal/enrichment"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

var enrichUpdateDescription bool

var enrichCmd = &cobra.Command{
	Use:   "enrich-ioc [case_id] [ioc_id]",
	Short: "Explain a case IOC using its enrichment report and organization context",
	Long:  `Fetches a case's IOC enrichment report, asks the LLM for an analyst-facing explanation grounded in organization RAG context, posts it as a case comment, and optionally folds a summary into the IOC description.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runEnrichIOC,
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichUpdateDescription, "update-description", false, "fold a condensed summary into the IOC description")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrichIOC(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	caseID, iocID := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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

	prompts, err := promptbuilder.Load(cfg.PromptDir)
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	prompts.RegisterDefaults()

	limiter := ratelimit.New(cfg.MaxCallsPerMinute, cfg.MaxDailyCostUSD)
	pipeline := rag.New(repo, provider, rerank.NewDistanceReranker(), limiter, prompts, nil, nil, rag.FromAppConfig(cfg))

	registry := analyzer.NewRegistry()
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var sources []caseadapter.Source
	if cfg.CaseAdapterPrimaryURL != "" {
		sources = append(sources, caseadapter.Source{Name: cfg.CaseAdapterPrimaryName, BaseURL: cfg.CaseAdapterPrimaryURL, APIKey: cfg.CaseAdapterPrimaryAPIKey})
	}
	if cfg.CaseAdapterFallbackURL != "" {
		sources = append(sources, caseadapter.Source{Name: cfg.CaseAdapterFallbackName, BaseURL: cfg.CaseAdapterFallbackURL, APIKey: cfg.CaseAdapterFallbackAPIKey})
	}
	caseAdapter := caseadapter.NewHTTPAdapter(httpClient, sources...)

	enricher := enrichment.NewLLMEnricher(registry, provider, prompts, pipeline, cfg.ChatModel, cfg.InputPricePer1M, cfg.OutputPricePer1M)
	orchestrator := enrichment.NewOrchestrator(caseAdapter, enricher, provider, prompts, cfg.SummaryModel, cfg.InputPricePer1M, cfg.OutputPricePer1M)

	result, err := orchestrator.EnrichIOC(ctx, caseID, iocID, enrichUpdateDescription)
	if err != nil {
		return fmt.Errorf("enrich-ioc failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
