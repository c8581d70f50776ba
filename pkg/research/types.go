package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikeboe/paper-assistant/pkg/clients"
)

// Config holds runtime configuration
type Config struct {
	// ContentLimit caps how many characters of a paper go into an analysis
	// prompt. Zero sends the whole paper.
	ContentLimit    int
	SummaryCacheTTL time.Duration
}

// Document is a paper loaded into a session.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AnalysisResult is the model's analysis of one document.
type AnalysisResult struct {
	Name     string `json:"name"`
	Analysis string `json:"analysis"`
	Content  string `json:"content"`
}

// ComparativeAnalysis is a comparison report split into its four sections.
type ComparativeAnalysis struct {
	Overview       string `json:"overview"`
	Similarities   string `json:"similarities"`
	Differences    string `json:"differences"`
	FutureResearch string `json:"future_research"`
}

// RelatedPaper is one suggested reading.
type RelatedPaper struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// QA is an answered question.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OutputFormat is the layout requested for an analysis.
type OutputFormat string

const (
	FormatText         OutputFormat = "Text"
	FormatBulletPoints OutputFormat = "Bullet Points"
	FormatTable        OutputFormat = "Table"
	FormatJSON         OutputFormat = "JSON"
)

// OutputFormats lists the supported output formats in display order.
var OutputFormats = []OutputFormat{FormatText, FormatBulletPoints, FormatTable, FormatJSON}

// FocusAreas are the aspects an analysis can be asked to emphasise.
var FocusAreas = []string{
	"Research Question",
	"Methodology",
	"Sample Size",
	"Key Findings",
	"Limitations",
	"Implications",
}

// DefaultFocusAreas is used when a request names none.
var DefaultFocusAreas = []string{"Research Question", "Key Findings"}

// ParseOutputFormat resolves a format name case-insensitively. "BulletPoints"
// and "bullets" are accepted for Bullet Points.
func ParseOutputFormat(s string) (OutputFormat, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch normalized {
	case "", "text":
		return FormatText, nil
	case "bulletpoints", "bullets":
		return FormatBulletPoints, nil
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// AnalysisRequest carries the user's analysis options.
type AnalysisRequest struct {
	FocusAreas   []string     `json:"focus_areas"`
	OutputFormat OutputFormat `json:"output_format"`
}

// Observer receives side-channel notifications while a batch runs. Any
// field may be nil.
type Observer struct {
	OnProgress func(fraction float64)
	OnResult   func(result AnalysisResult)
	OnFailure  func(doc Document, err error)
}

func (o Observer) progress(f float64) {
	if o.OnProgress != nil {
		o.OnProgress(f)
	}
}

func (o Observer) result(r AnalysisResult) {
	if o.OnResult != nil {
		o.OnResult(r)
	}
}

func (o Observer) failure(d Document, err error) {
	if o.OnFailure != nil {
		o.OnFailure(d, err)
	}
}

// Conversation is the explicit history shared by model calls in a session.
// It is not safe for concurrent use; the owning session serialises access.
type Conversation struct {
	turns []clients.Turn
}

// History returns a copy of the turns so far.
func (c *Conversation) History() []clients.Turn {
	if c == nil {
		return nil
	}
	out := make([]clients.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Append records a prompt and the model's answer.
func (c *Conversation) Append(prompt, answer string) {
	if c == nil {
		return
	}
	c.turns = append(c.turns,
		clients.Turn{Role: clients.RoleUser, Text: prompt},
		clients.Turn{Role: clients.RoleModel, Text: answer},
	)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

// Reset drops the history.
func (c *Conversation) Reset() {
	if c != nil {
		c.turns = nil
	}
}
