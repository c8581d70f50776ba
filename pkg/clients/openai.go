package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIModel implements ChatModel with OpenAI's Chat Completions API.
type OpenAIModel struct {
	client *openai.Client
	cfg    GenerationConfig
}

// NewOpenAIModel creates a new OpenAI-backed model. BaseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIModel(cfg GenerationConfig) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" || cfg.Model == string(DefaultModel) {
		cfg.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIModel{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

func (m *OpenAIModel) Name() string {
	return "openai"
}

func (m *OpenAIModel) Generate(ctx context.Context, history []Turn, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		Messages:    OpenAIMessages(history, prompt),
		MaxTokens:   m.cfg.MaxOutputTokens,
		Temperature: float32(m.cfg.Temperature),
		TopP:        float32(m.cfg.TopP),
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// OpenAIMessages converts a history plus the new prompt into chat messages.
func OpenAIMessages(history []Turn, prompt string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}
