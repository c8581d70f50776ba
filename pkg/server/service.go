package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mikeboe/paper-assistant/pkg/chat"
	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/pdf"
	"github.com/mikeboe/paper-assistant/pkg/research"
	"github.com/mikeboe/paper-assistant/pkg/session"
)

// ChartTypes are the visualisations a client may offer for numeric results.
var ChartTypes = []string{"Bar", "Pie", "Histogram"}

// Options lists every enumerated choice a client can present.
type Options struct {
	OutputFormats     []research.OutputFormat `json:"output_formats"`
	FocusAreas        []string                `json:"focus_areas"`
	DefaultFocusAreas []string                `json:"default_focus_areas"`
	CitationStyles    []citation.Style        `json:"citation_styles"`
	ChartTypes        []string                `json:"chart_types"`
}

// UploadedFile is a raw file received from a client.
type UploadedFile struct {
	Name string
	Data []byte
}

// Summary is the summary of one paper. Summary is nil when generation failed.
type Summary struct {
	Name    string  `json:"name"`
	Summary *string `json:"summary"`
}

type Service struct {
	Store      *session.Store
	Analyzer   *research.Analyzer
	Extractor  *pdf.Extractor
	Chat       *chat.Service
	SearchTopK int
	Logger     *slog.Logger
}

func NewService(store *session.Store, analyzer *research.Analyzer, extractor *pdf.Extractor, chatSvc *chat.Service) *Service {
	return &Service{
		Store:      store,
		Analyzer:   analyzer,
		Extractor:  extractor,
		Chat:       chatSvc,
		SearchTopK: 5,
		Logger:     slog.Default(),
	}
}

func (s *Service) Options() Options {
	return Options{
		OutputFormats:     research.OutputFormats,
		FocusAreas:        research.FocusAreas,
		DefaultFocusAreas: research.DefaultFocusAreas,
		CitationStyles:    citation.Styles,
		ChartTypes:        ChartTypes,
	}
}

// analyzer returns the analyzer logging through the session's notices.
func (s *Service) analyzer(sess *session.Session) *research.Analyzer {
	return s.Analyzer.WithLogger(sess.Logger(s.Logger))
}

// LoadPapers extracts text from files and replaces the session's papers. A
// file that cannot be parsed is skipped with a notice; one without text is
// kept with empty content and a notice.
func (s *Service) LoadPapers(ctx context.Context, sess *session.Session, files []UploadedFile) []string {
	logger := sess.Logger(s.Logger)

	docs := make([]research.Document, 0, len(files))
	for _, f := range files {
		text, err := s.Extractor.Extract(ctx, f.Name, f.Data)
		if err != nil {
			logger.Warn("Could not extract text", "paper", f.Name, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("No text found in paper", "paper", f.Name)
		}
		docs = append(docs, research.Document{Name: f.Name, Content: text})
	}

	return s.setDocuments(sess, docs)
}

// LoadText replaces the session's papers with already extracted documents.
func (s *Service) LoadText(sess *session.Session, docs []research.Document) []string {
	logger := sess.Logger(s.Logger)
	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			logger.Warn("No text found in paper", "paper", d.Name)
		}
	}
	return s.setDocuments(sess, docs)
}

func (s *Service) setDocuments(sess *session.Session, docs []research.Document) []string {
	sess.SetDocuments(docs)
	names := make([]string, len(sess.Documents))
	for i, d := range sess.Documents {
		names[i] = d.Name
	}
	s.Logger.Info("Papers loaded", "session_id", sess.ID.String(), "papers", len(names))
	return names
}

// Analyze runs the batch analysis and stores the results on the session.
func (s *Service) Analyze(ctx context.Context, sess *session.Session, req research.AnalysisRequest, obs research.Observer) []research.AnalysisResult {
	results := s.analyzer(sess).AnalyzeAll(ctx, &sess.Conversation, sess.Documents, req, obs)
	sess.Results = results
	return results
}

// Compare returns nil and no error when the model failed; the failure is a
// notice on the session.
func (s *Service) Compare(ctx context.Context, sess *session.Session) (*research.ComparativeAnalysis, error) {
	comparison, err := s.analyzer(sess).Compare(ctx, &sess.Conversation, sess.Results)
	if errors.Is(err, research.ErrModelInvocation) {
		return nil, nil
	}
	return comparison, err
}

// Related returns the suggestions, or nil when the model failed or its
// answer could not be parsed.
func (s *Service) Related(ctx context.Context, sess *session.Session) ([]research.RelatedPaper, error) {
	papers, err := s.analyzer(sess).FindRelated(ctx, &sess.Conversation, sess.Results)
	if errors.Is(err, research.ErrModelInvocation) || errors.Is(err, research.ErrParse) {
		return nil, nil
	}
	return papers, err
}

// Summaries summarises every loaded paper.
func (s *Service) Summaries(ctx context.Context, sess *session.Session) ([]Summary, error) {
	if len(sess.Documents) == 0 {
		return nil, research.ErrNoResults
	}

	a := s.analyzer(sess)
	out := make([]Summary, len(sess.Documents))
	for i, d := range sess.Documents {
		out[i].Name = d.Name
		summary, err := a.Summarize(ctx, d.Content)
		if err != nil {
			continue
		}
		out[i].Summary = &summary
	}
	return out, nil
}

func (s *Service) Citations(sess *session.Session, style citation.Style) []research.PaperCitations {
	if style == "" {
		style = sess.CitationStyle
	}
	return research.CitationsByPaper(sess.Documents, style)
}

func (s *Service) Search(sess *session.Session, query string, topK int) ([]research.SearchResult, error) {
	if topK <= 0 {
		topK = s.SearchTopK
	}
	return research.SearchPapers(sess.Documents, query, topK)
}

// Ask answers question and records it on the session. The answer is nil when
// the model failed.
func (s *Service) Ask(ctx context.Context, sess *session.Session, question string) (*research.QA, error) {
	answer, err := s.analyzer(sess).Ask(ctx, &sess.Conversation, question)
	if errors.Is(err, research.ErrModelInvocation) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	qa := research.QA{Question: strings.TrimSpace(question), Answer: answer}
	sess.QA = append(sess.QA, qa)
	return &qa, nil
}
