// Package session keeps the per-user state of the assistant: loaded papers,
// analysis results, the model conversation and user-visible notices.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

// Notice is a warning or error surfaced to the user.
type Notice struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Session is one user's workspace. Everything except notices is guarded by
// the session lock, which a request holds for the whole operation.
type Session struct {
	mu sync.Mutex

	ID            uuid.UUID
	CreatedAt     time.Time
	Documents     []research.Document
	Results       []research.AnalysisResult
	Conversation  research.Conversation
	QA            []research.QA
	CitationStyle citation.Style

	noticeMu sync.Mutex
	notices  []Notice
}

// View is a JSON snapshot of a session.
type View struct {
	ID            uuid.UUID                 `json:"id"`
	CreatedAt     time.Time                 `json:"created_at"`
	Papers        []string                  `json:"papers"`
	Results       []research.AnalysisResult `json:"results"`
	QA            []research.QA             `json:"qa"`
	CitationStyle citation.Style            `json:"citation_style"`
	Turns         int                       `json:"turns"`
	Notices       []Notice                  `json:"notices"`
}

func New(style citation.Style) *Session {
	if style == "" {
		style = citation.APA
	}
	return &Session{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		CitationStyle: style,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SetDocuments replaces the loaded papers and drops results derived from the
// previous set. Duplicate names get " (n)" suffixes. Callers hold the lock.
func (s *Session) SetDocuments(docs []research.Document) {
	used := make(map[string]bool, len(docs))
	out := make([]research.Document, 0, len(docs))
	for _, d := range docs {
		name := d.Name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", d.Name, n)
		}
		used[name] = true
		out = append(out, research.Document{Name: name, Content: d.Content})
	}
	s.Documents = out
	s.Results = nil
}

// Reset clears papers, results, questions and the conversation.
// Callers hold the lock.
func (s *Session) Reset() {
	s.Documents = nil
	s.Results = nil
	s.QA = nil
	s.Conversation.Reset()
	s.ClearNotices()
}

// View snapshots the session. Callers hold the lock.
func (s *Session) View() View {
	papers := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		papers[i] = d.Name
	}
	results := s.Results
	if results == nil {
		results = []research.AnalysisResult{}
	}
	qa := s.QA
	if qa == nil {
		qa = []research.QA{}
	}
	return View{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Papers:        papers,
		Results:       results,
		QA:            qa,
		CitationStyle: s.CitationStyle,
		Turns:         s.Conversation.Len(),
		Notices:       s.Notices(),
	}
}

// AddNotice records a user-visible notice. Safe while the session lock is
// held by another goroutine.
func (s *Session) AddNotice(n Notice) {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	s.notices = append(s.notices, n)
}

// Notices returns a copy of the recorded notices.
func (s *Session) Notices() []Notice {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

func (s *Session) ClearNotices() {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	s.notices = nil
}

// Logger returns a logger that writes to base and records warnings and
// errors on the session.
func (s *Session) Logger(base *slog.Logger) *slog.Logger {
	return slog.New(NewNoticeHandler(base.Handler(), s)).With("session_id", s.ID.String())
}
