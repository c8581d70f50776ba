package clients

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ChatModel is the language-model collaborator. History holds the prior
// turns the caller wants the model to see; the model keeps no state of its own.
type ChatModel interface {
	Name() string
	Generate(ctx context.Context, history []Turn, prompt string) (string, error)
}

// GenerationConfig holds sampling settings shared by every provider.
type GenerationConfig struct {
	Model           string
	APIKey          string
	BaseURL         string // OpenAI-compatible endpoint; openai provider only
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// DefaultGenerationConfig mirrors the settings the assistant was tuned with.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:           string(DefaultModel),
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
}
