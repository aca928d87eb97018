package llm

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// NewProvider creates a new LLM provider based on the given provider type and
// model. Supported provider types: "anthropic", "openai", "google", "ollama".
// Credentials are read directly from the environment — there is no stored
// credential store in this deployment model.
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key not found: set ANTHROPIC_API_KEY")
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found: set OPENAI_API_KEY")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey != "" {
			return NewGoogleProvider(apiKey, model), nil
		}
		if ts := googleTokenSource(); ts != nil {
			return NewGoogleProviderWithTokenSource(ts, model), nil
		}
		return nil, fmt.Errorf("Google API credentials not found: set GOOGLE_API_KEY or GOOGLE_OAUTH_REFRESH_TOKEN")

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// googleTokenSource builds an OAuth2 token source from refresh-token
// credentials supplied via environment variables, for operators who front
// Gemini with a service account rather than a bare API key.
func googleTokenSource() oauth2.TokenSource {
	refreshToken := os.Getenv("GOOGLE_OAUTH_REFRESH_TOKEN")
	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		return nil
	}
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	return conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: refreshToken})
}
