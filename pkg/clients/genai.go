package clients

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIModel talks to the Gemini API through the google.golang.org/genai SDK.
type GenAIModel struct {
	client *genai.Client
	cfg    GenerationConfig
}

func NewGenAIModel(ctx context.Context, cfg GenerationConfig) (*GenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(DefaultModel)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIModel{client: client, cfg: cfg}, nil
}

func (m *GenAIModel) Name() string {
	return "genai"
}

func (m *GenAIModel) Generate(ctx context.Context, history []Turn, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.cfg.Model, GenAIContents(history, prompt), m.generateConfig())
	if err != nil {
		return "", fmt.Errorf("genai generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (m *GenAIModel) generateConfig() *genai.GenerateContentConfig {
	temperature := float32(m.cfg.Temperature)
	topP := float32(m.cfg.TopP)
	gc := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: int32(m.cfg.MaxOutputTokens),
	}
	if m.cfg.TopK > 0 {
		topK := float32(m.cfg.TopK)
		gc.TopK = &topK
	}
	return gc
}

// GenAIContents converts a history plus the new prompt into genai contents.
func GenAIContents(history []Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == RoleModel {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	return append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	})
}
