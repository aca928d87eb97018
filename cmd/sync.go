package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberfortress-labs/smartxdr-core/internal/progress"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
	"github.com/cyberfortress-labs/smartxdr-core/internal/sync"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the documents directory with the vector store",
	Long:  `Walks the configured documents directory, hashes each file, and applies the minimal set of add/update/delete operations needed to bring the vector store back in sync.`,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "re-chunk and re-embed every file, ignoring content hashes")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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
			fmt.Fprintf(os.Stderr, "warning: could not load existing vector store from %s: %v\n", cfg.ChromaDBPath, err)
		}
	}

	engine := sync.New(repo, sync.FromAppConfig(cfg, syncForce))
	engine.SetProgressFunc(sync.Reporter(progress.NewReporter()))

	result, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if cfg.ChromaDBPath != "" {
		if err := repo.Persist(ctx, cfg.ChromaDBPath); err != nil {
			return fmt.Errorf("persisting vector store: %w", err)
		}
	}

	fmt.Printf("sync complete: %d added, %d updated, %d deleted, %d skipped in %s\n",
		result.Added, result.Updated, result.Deleted, result.Skipped, result.Duration)
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "  error: %v\n", e)
	}
	return nil
}
