package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberfortress-labs/smartxdr-core/internal/alerts"
	"github.com/cyberfortress-labs/smartxdr-core/internal/analyzer"
	"github.com/cyberfortress-labs/smartxdr-core/internal/cache"
	"github.com/cyberfortress-labs/smartxdr-core/internal/caseadapter"
	"github.com/cyberfortress-labs/smartxdr-core/internal/enrichment"
	"github.com/cyberfortress-labs/smartxdr-core/internal/httpapi"
	"github.com/cyberfortress-labs/smartxdr-core/internal/kvstore"
	"github.com/cyberfortress-labs/smartxdr-core/internal/logstore"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/server"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

var allowAllOrigins bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the smartxdr-core HTTP API",
	Long:  `Starts the RAG query, alert-triage, and IOC-enrichment HTTP surface described in spec.md §6.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
			if err := repo.Load(context.Background(), cfg.ChromaDBPath); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not load vector store from %s: %v\n", cfg.ChromaDBPath, err)
				fmt.Fprintf(os.Stderr, "search results will be empty until `smartxdr sync` runs\n")
			}
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

		var reranker rerank.Reranker
		if cfg.CrossEncoderURL != "" {
			reranker = rerank.NewHTTPReranker(cfg.CrossEncoderURL, 10*time.Second)
		} else {
			reranker = rerank.NewDistanceReranker()
		}

		limiter := ratelimit.New(cfg.MaxCallsPerMinute, cfg.MaxDailyCostUSD)

		var l2 kvstore.Store
		if cfg.RedisHost != "" {
			l2 = kvstore.NewRedisStore(cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
		}
		responseCache := cache.New(l2, embedder, cache.FromAppConfig(cfg))

		pipeline := rag.New(repo, provider, reranker, limiter, prompts, responseCache, nil, rag.FromAppConfig(cfg))

		registry := analyzer.NewRegistry()
		httpClient := &http.Client{Timeout: 30 * time.Second}

		var caseSources []caseadapter.Source
		if cfg.CaseAdapterPrimaryURL != "" {
			caseSources = append(caseSources, caseadapter.Source{
				Name:    cfg.CaseAdapterPrimaryName,
				BaseURL: cfg.CaseAdapterPrimaryURL,
				APIKey:  cfg.CaseAdapterPrimaryAPIKey,
			})
		}
		if cfg.CaseAdapterFallbackURL != "" {
			caseSources = append(caseSources, caseadapter.Source{
				Name:    cfg.CaseAdapterFallbackName,
				BaseURL: cfg.CaseAdapterFallbackURL,
				APIKey:  cfg.CaseAdapterFallbackAPIKey,
			})
		}
		caseAdapter := caseadapter.NewHTTPAdapter(httpClient, caseSources...)

		enricher := enrichment.NewLLMEnricher(registry, provider, prompts, pipeline, cfg.ChatModel, cfg.InputPricePer1M, cfg.OutputPricePer1M)
		orchestrator := enrichment.NewOrchestrator(caseAdapter, enricher, provider, prompts, cfg.SummaryModel, cfg.InputPricePer1M, cfg.OutputPricePer1M)

		logs := logstore.NewHTTPAdapter(httpClient, cfg.LogStoreURL, cfg.LogStoreUsername, cfg.LogStorePassword, cfg.LogStoreIndexPattern)

		var audit *alerts.AuditLog
		if cfg.AlertAuditDBPath != "" {
			audit, err = alerts.OpenAuditLog(cfg.AlertAuditDBPath)
			if err != nil {
				return fmt.Errorf("opening alert audit log: %w", err)
			}
			defer audit.Close()
		}

		summarizer := alerts.New(logs, pipeline, prompts, audit, alerts.Config{
			DefaultWindowMinutes: cfg.AlertTimeWindowMinutes,
			MinProbability:       cfg.AlertMinProbability,
			WhitelistIPs:         cfg.WhitelistIPQuery,
			EnableVisualization:  cfg.AlertVisualizationEnabled,
			EnableAIAnalysis:     cfg.AlertAIAnalysisEnabled,
		})

		deps := httpapi.Deps{
			Repo:                      repo,
			Pipeline:                  pipeline,
			Summarizer:                summarizer,
			Orchestrator:              orchestrator,
			DefaultTopK:               cfg.DefaultResults,
			DefaultAlertWindowMinutes: cfg.AlertTimeWindowMinutes,
			DefaultIndexPattern:       cfg.LogStoreIndexPattern,
		}

		listenAddr := cfg.ListenAddr
		if listenAddr == "" {
			listenAddr = ":8080"
		}
		srv := server.New(server.Config{ListenAddr: listenAddr, AllowAll: allowAllOrigins}, deps)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nshutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
			if cfg.ChromaDBPath != "" {
				if err := repo.Persist(context.Background(), cfg.ChromaDBPath); err != nil {
					fmt.Fprintf(os.Stderr, "warning: could not persist vector store: %v\n", err)
				}
			}
		}()

		fmt.Fprintf(os.Stderr, "smartxdr-core %s starting on %s\n", Version, listenAddr)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&allowAllOrigins, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
