// Package chat runs the tool-using research assistant over a session's
// papers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/mikeboe/paper-assistant/pkg/clients"
	"github.com/mikeboe/paper-assistant/pkg/config"
	"github.com/mikeboe/paper-assistant/pkg/session"
)

const (
	appName   = "paper-assistant"
	agentName = "paper_assistant"
	userID    = "user"

	instruction = "You are a helpful research assistant working with the papers the user uploaded. " +
		"Use search_papers to find passages before answering questions about the papers, " +
		"list_citations when asked about references, and search_arxiv to suggest further reading. " +
		"Name the paper each statement comes from."
)

// ErrUnavailable is returned when the assistant cannot run with the
// configured provider.
var ErrUnavailable = errors.New("assistant requires a Google provider and API key")

// StreamEvent represents a single event in the chat stream
type StreamEvent struct {
	Type    string      `json:"type"` // "content", "tool_call", "tool_result", "error", "done"
	Payload interface{} `json:"payload"`
}

type Service struct {
	Model  model.LLM
	TopK   int
	Logger *slog.Logger
}

func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if !clients.IsGoogle(cfg.Provider) || cfg.APIKey == "" {
		return nil, ErrUnavailable
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = string(clients.DefaultModel)
	}

	modelClient, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	return &Service{Model: modelClient, TopK: cfg.SearchTopK, Logger: slog.Default()}, nil
}

func (s *Service) newAgent(sess *session.Session) (agent.Agent, error) {
	paperTools := NewPaperToolset(sess.Documents, sess.CitationStyle, s.TopK)

	return llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       s.Model,
		Description: "A research assistant with access to the uploaded papers.",
		Instruction: instruction,
		Toolsets: []tool.Toolset{
			paperTools,
		},
	})
}

// Send runs the agent on content with the session's conversation as history.
// The caller must hold the session lock until the returned sequence is
// drained; the final answer is appended to the conversation at the end.
func (s *Service) Send(ctx context.Context, sess *session.Session, content string) (iter.Seq2[StreamEvent, error], error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message must not be empty")
	}

	researchAgent, err := s.newAgent(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessionSvc := adksession.InMemoryService()
	sessionID := uuid.NewString()

	createRes, err := sessionSvc.Create(ctx, &adksession.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent session: %w", err)
	}
	storedSession := createRes.Session

	for _, turn := range sess.Conversation.History() {
		author := userID
		if turn.Role == clients.RoleModel {
			author = agentName
		}

		evt := adksession.NewEvent(uuid.NewString())
		evt.Author = author
		evt.LLMResponse = model.LLMResponse{
			Content: &genai.Content{
				Role:  string(turn.Role),
				Parts: []*genai.Part{{Text: turn.Text}},
			},
		}
		if err := sessionSvc.AppendEvent(ctx, storedSession, evt); err != nil {
			return nil, fmt.Errorf("failed to hydrate history: %w", err)
		}
	}

	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          researchAgent,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	userContent := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: content}},
	}

	logger := s.Logger.With("session_id", sess.ID.String())

	return func(yield func(StreamEvent, error) bool) {
		logger.Info("Starting agent run", "papers", len(sess.Documents))
		runCfg := agent.RunConfig{
			StreamingMode: agent.StreamingModeSSE,
		}

		var finalResponse strings.Builder
		streamedPartial := false
		for event, err := range r.Run(ctx, userID, sessionID, userContent, runCfg) {
			if err != nil {
				logger.Error("Agent runner error", "error", err)
				yield(StreamEvent{Type: "error", Payload: err.Error()}, err)
				return
			}
			if event.LLMResponse.Content == nil {
				continue
			}
			partial := event.LLMResponse.Partial

			for _, part := range event.LLMResponse.Content.Parts {
				// Partial chunks are followed by an aggregated copy of the same text.
				if part.Text != "" && (partial || !streamedPartial) {
					finalResponse.WriteString(part.Text)
					if !yield(StreamEvent{Type: "content", Payload: part.Text}, nil) {
						return
					}
				}
				if part.FunctionCall != nil {
					logger.Info("Agent tool call", "tool", part.FunctionCall.Name)
					if !yield(StreamEvent{Type: "tool_call", Payload: part.FunctionCall}, nil) {
						return
					}
				}
				if part.FunctionResponse != nil {
					logger.Info("Agent tool result", "tool", part.FunctionResponse.Name)
					if !yield(StreamEvent{Type: "tool_result", Payload: part.FunctionResponse}, nil) {
						return
					}
				}
			}
			streamedPartial = partial
		}

		logger.Info("Agent run completed", "response_length", finalResponse.Len())
		if finalResponse.Len() > 0 {
			sess.Conversation.Append(content, finalResponse.String())
		}
		yield(StreamEvent{Type: "done", Payload: "done"}, nil)
	}, nil
}
