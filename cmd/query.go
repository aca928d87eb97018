package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Run one RAG query against the indexed security documentation",
	Long:  `Runs the retrieval-augmented generation pipeline for a single question and prints the answer.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("top-k", 0, "number of documents to retrieve (defaults to config's default_results)")
	queryCmd.Flags().Bool("json", false, "output the full result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	topK, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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
		if err := repo.Load(ctx, cfg.ChromaDBPath); err != nil {
			return fmt.Errorf("loading vector store from %s: %w\nRun `smartxdr sync` first to build the index", cfg.ChromaDBPath, err)
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

	limiter := ratelimit.New(cfg.MaxCallsPerMinute, cfg.MaxDailyCostUSD)
	pipeline := rag.New(repo, provider, rerank.NewDistanceReranker(), limiter, prompts, nil, nil, rag.FromAppConfig(cfg))

	result, err := pipeline.Query(ctx, queryText, topK, nil, "")
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Status != "success" {
		fmt.Printf("query failed: %s\n", result.Error)
		return nil
	}
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range result.Sources {
			fmt.Printf("  - %s\n", s)
		}
	}
	return nil
}
