package cmd

import (
	"fmt"
	"os"

	"github.com/cyberfortress-labs/smartxdr-core/internal/config"
	"github.com/cyberfortress-labs/smartxdr-core/internal/embeddings"
	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Shared by the serve and sync commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found: set %s", config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		if model == "" {
			model = "text-embedding-3-small"
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("Google API credentials not found: set %s", config.APIKeyEnvVar(config.ProviderGoogle))
		}
		if model == "" {
			model = "text-embedding-004"
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(model)), nil
	case config.ProviderOllama:
		if model == "" {
			model = "nomic-embed-text"
		}
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found (used for embeddings when provider is %s): set %s", provider, config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		if model == "" {
			model = "text-embedding-3-small"
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider for the configured
// chat model.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.ChatModel)
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `smartxdr init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
