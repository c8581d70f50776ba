package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ModelType is an enum for the available Google AI models.
type ModelType string

const (
	// DefaultModel is the default model to use if none is specified
	DefaultModel ModelType = "gemini-1.5-flash"
)

// LangchainModel adapts any langchaingo llms.Model to ChatModel.
type LangchainModel struct {
	name string
	llm  llms.Model
	cfg  GenerationConfig
}

// NewLangchainModel wraps llm. name is reported by Name.
func NewLangchainModel(name string, llm llms.Model, cfg GenerationConfig) *LangchainModel {
	return &LangchainModel{name: name, llm: llm, cfg: cfg}
}

func GoogleAi(ctx context.Context, cfg GenerationConfig) (*LangchainModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = string(DefaultModel)
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(cfg.APIKey), googleai.WithDefaultModel(modelName))
	if err != nil {
		return nil, fmt.Errorf("failed to init googleai: %w", err)
	}

	cfg.Model = modelName
	return NewLangchainModel("googleai", llm, cfg), nil
}

func (m *LangchainModel) Name() string {
	return m.name
}

func (m *LangchainModel) Generate(ctx context.Context, history []Turn, prompt string) (string, error) {
	messages := LangchainMessages(history, prompt)

	opts := []llms.CallOption{
		llms.WithTemperature(m.cfg.Temperature),
		llms.WithTopP(m.cfg.TopP),
		llms.WithMaxTokens(m.cfg.MaxOutputTokens),
	}
	if m.cfg.TopK > 0 {
		opts = append(opts, llms.WithTopK(m.cfg.TopK))
	}

	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", m.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// LangchainMessages converts a history plus the new prompt into langchaingo
// message contents.
func LangchainMessages(history []Turn, prompt string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == RoleModel {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
}
