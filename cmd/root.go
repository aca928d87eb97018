package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "smartxdr",
	Short: "Security-operations RAG core: retrieval, alert triage, and IOC enrichment",
	Long: `smartxdr-core serves a retrieval-augmented generation pipeline over an
organization's security documentation, summarizes classified log alerts
into risk-scored digests, and enriches case-management IOCs with
analyst-facing explanations pulled from third-party threat intelligence.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".smartxdr.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
