package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
)

// Claude35Haiku replaces the Gemini default when the provider is Anthropic.
const Claude35Haiku ModelType = "claude-3-5-haiku-20241022"

func AnthropicAI(cfg GenerationConfig) (*LangchainModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	modelName := cfg.Model
	if modelName == "" || modelName == string(DefaultModel) {
		modelName = string(Claude35Haiku)
	}

	llm, err := anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(modelName))
	if err != nil {
		return nil, fmt.Errorf("failed to init anthropic: %w", err)
	}

	// Anthropic gets temperature and top_p only.
	cfg.TopK = 0
	cfg.Model = modelName
	return NewLangchainModel("anthropic", llm, cfg), nil
}
