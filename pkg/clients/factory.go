package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikeboe/paper-assistant/pkg/config"
)

// ConfigFromApp converts the application config into generation settings.
func ConfigFromApp(cfg *config.Config) GenerationConfig {
	gc := DefaultGenerationConfig()
	if cfg.Model != "" {
		gc.Model = cfg.Model
	}
	gc.APIKey = cfg.APIKey
	gc.BaseURL = cfg.BaseURL
	gc.Temperature = cfg.Temperature
	gc.TopP = cfg.TopP
	gc.TopK = cfg.TopK
	if cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.MaxOutputTokens
	}
	return gc
}

// NewChatModel creates the provider named by cfg.Provider and applies the
// configured rate limit.
func NewChatModel(ctx context.Context, cfg *config.Config) (ChatModel, error) {
	gc := ConfigFromApp(cfg)

	var (
		model ChatModel
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "googleai", "google", "gemini", "":
		model, err = GoogleAi(ctx, gc)
	case "genai":
		model, err = NewGenAIModel(ctx, gc)
	case "anthropic", "claude":
		model, err = AnthropicAI(gc)
	case "openai":
		model, err = NewOpenAIModel(gc)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: googleai, genai, anthropic, openai)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewRateLimited(model, cfg.RequestsPerMinute), nil
}

// IsGoogle reports whether provider talks to the Gemini API.
func IsGoogle(provider string) bool {
	switch strings.ToLower(provider) {
	case "googleai", "google", "gemini", "genai", "":
		return true
	}
	return false
}
