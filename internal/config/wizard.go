package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .smartxdr.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to smartxdr-core! Let's configure your deployment.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic", "google", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	docsPrompt := promptui.Prompt{
		Label:   "Documents directory to sync into the vector store",
		Default: "docs",
	}
	docsDir, err := docsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("docs dir: %w", err)
	}

	redisPrompt := promptui.Prompt{
		Label:   "Redis host for L2 cache (blank to disable L2)",
		Default: "",
	}
	redisHost, err := redisPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("redis host: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.EmbeddingProvider = embeddingProviderFor(provider)
	cfg.SyncDocsDir = docsDir
	cfg.RedisHost = redisHost

	envVar := APIKeyEnvVar(provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: set %s in your environment before starting the server.\n", envVar)
	}

	configPath := ".smartxdr.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings are used for all cloud providers.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}
