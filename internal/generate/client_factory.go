package generate

import (
	"context"
	"fmt"
	"os"

	"gauntlet/internal/config"
)

// NewClient builds an LLMClient from generation settings. An empty
// provider falls back to whichever API key is present in the
// environment, OpenAI first to match the original tooling.
func NewClient(ctx context.Context, cfg config.GenerationConfig) (LLMClient, error) {
	provider := Provider(cfg.Provider)
	if provider == "" {
		provider = detectProvider()
	}

	apiKey := cfg.APIKey
	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		return NewGeminiClient(ctx, apiKey, cfg.Model, cfg.Temperature)
	case ProviderOpenAI:
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIClient(apiKey, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}
}

func detectProvider() Provider {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		return ProviderGemini
	}
	return ProviderOpenAI
}
