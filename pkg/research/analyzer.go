package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mikeboe/paper-assistant/pkg/cache"
	"github.com/mikeboe/paper-assistant/pkg/clients"
	"github.com/mikeboe/paper-assistant/pkg/splitter"
)

const summaryPrompt = "Provide a concise summary of the following research paper, highlighting the main research question, methodology, key findings, and conclusions:"

// Analyzer runs the model-backed operations over a session's papers.
type Analyzer struct {
	Config Config
	LLM    clients.ChatModel
	Cache  cache.Cache
	Logger *slog.Logger
}

func NewAnalyzer(cfg Config, llm clients.ChatModel) *Analyzer {
	return &Analyzer{
		Config: cfg,
		LLM:    llm,
		Cache:  cache.NewMemoryCache(cfg.SummaryCacheTTL, 10*time.Minute),
		Logger: slog.Default(),
	}
}

// WithLogger returns a copy of the analyzer that logs to logger. The summary
// cache is shared with the original.
func (a *Analyzer) WithLogger(logger *slog.Logger) *Analyzer {
	clone := *a
	clone.Logger = logger
	return &clone
}

// invoke sends prompt with the conversation's history and records the
// exchange on success. conv may be nil.
func (a *Analyzer) invoke(ctx context.Context, conv *Conversation, prompt string) (string, error) {
	answer, err := a.LLM.Generate(ctx, conv.History(), prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, clients.ErrEmptyResponse)
	}
	conv.Append(prompt, answer)
	return answer, nil
}

// AnalysisPrompt builds the per-paper analysis prompt.
func (a *Analyzer) AnalysisPrompt(doc Document, req AnalysisRequest) string {
	focus := req.FocusAreas
	if len(focus) == 0 {
		focus = DefaultFocusAreas
	}
	format := req.OutputFormat
	if format == "" {
		format = FormatText
	}

	content, truncated := splitter.Truncate(doc.Content, a.Config.ContentLimit)
	if truncated {
		content += "..."
	}

	return fmt.Sprintf("Analyze the following research paper content. Focus on: %s. Format the output as %s.\n\n%s",
		strings.Join(focus, ", "), format, content)
}

// AnalyzeAll analyzes each paper in order with one model call per paper. A
// failed paper is reported through obs and skipped, so the result can be
// shorter than papers.
func (a *Analyzer) AnalyzeAll(ctx context.Context, conv *Conversation, papers []Document, req AnalysisRequest, obs Observer) []AnalysisResult {
	results := make([]AnalysisResult, 0, len(papers))

	for i, paper := range papers {
		a.Logger.Info("Analyzing paper", "paper", paper.Name, "content_length", len(paper.Content), "index", i+1, "total", len(papers))

		analysis, err := a.invoke(ctx, conv, a.AnalysisPrompt(paper, req))
		if err != nil {
			a.Logger.Warn("No analysis generated", "paper", paper.Name, "error", err)
			obs.failure(paper, err)
		} else {
			result := AnalysisResult{Name: paper.Name, Analysis: analysis, Content: paper.Content}
			results = append(results, result)
			a.Logger.Info("Analysis complete", "paper", paper.Name)
			obs.result(result)
		}

		obs.progress(float64(i+1) / float64(len(papers)))
	}

	return results
}

// Ask answers a free-form question in the context of the conversation.
func (a *Analyzer) Ask(ctx context.Context, conv *Conversation, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrInvalidQuestion
	}

	answer, err := a.invoke(ctx, conv, question)
	if err != nil {
		a.Logger.Warn("Failed to answer question", "error", err)
		return "", err
	}
	return answer, nil
}

// Summarize returns a concise summary of content. Summaries are cached by a
// hash of the prompt template and the content, and are generated without
// conversation history so a cached answer never depends on earlier turns.
func (a *Analyzer) Summarize(ctx context.Context, content string) (string, error) {
	key := cache.Key(summaryPrompt, content)
	if a.Cache != nil {
		if summary, ok := a.Cache.Get(key); ok {
			a.Logger.Debug("Summary cache hit", "key", key)
			return summary, nil
		}
	}

	summary, err := a.invoke(ctx, nil, summaryPrompt+"\n\n"+content)
	if err != nil {
		a.Logger.Warn("Failed to summarize paper", "error", err)
		return "", err
	}

	if a.Cache != nil {
		a.Cache.Set(key, summary)
	}
	return summary, nil
}

// Export renders results as the plain-text analysis export.
func Export(results []AnalysisResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("Analysis of %s:\n", r.Name))
		sb.WriteString(r.Analysis)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ExportFilename returns the conventional export file name for t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("analysis_results_%s.txt", t.Format("20060102-150405"))
}
