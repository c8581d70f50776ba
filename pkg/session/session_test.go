package session

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

func TestSetDocumentsDeduplicatesNames(t *testing.T) {
	s := New("")
	s.Results = []research.AnalysisResult{{Name: "old"}}

	s.SetDocuments([]research.Document{
		{Name: "a.pdf", Content: "1"},
		{Name: "a.pdf", Content: "2"},
		{Name: "b.pdf", Content: "3"},
		{Name: "a.pdf", Content: "4"},
	})

	names := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"a.pdf", "a.pdf (1)", "b.pdf", "a.pdf (2)"}, names)
	assert.Nil(t, s.Results)

	assert.Equal(t, "4", s.Documents[3].Content)
}

func TestNewDefaultsCitationStyle(t *testing.T) {
	assert.Equal(t, citation.APA, New("").CitationStyle)
	assert.Equal(t, citation.MLA, New(citation.MLA).CitationStyle)
}

func TestViewAndReset(t *testing.T) {
	s := New(citation.Chicago)
	s.SetDocuments([]research.Document{{Name: "a.pdf"}})
	s.Conversation.Append("q", "a")
	s.AddNotice(Notice{Level: "WARN", Message: "careful"})

	v := s.View()
	assert.Equal(t, []string{"a.pdf"}, v.Papers)
	assert.Equal(t, 2, v.Turns)
	assert.Len(t, v.Notices, 1)
	assert.NotNil(t, v.Results)

	s.Reset()
	v = s.View()
	assert.Empty(t, v.Papers)
	assert.Zero(t, v.Turns)
	assert.Empty(t, v.Notices)
}

func TestStore(t *testing.T) {
	st := NewStore(time.Hour, citation.MLA)
	s := st.Create()
	assert.Equal(t, citation.MLA, s.CitationStyle)
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID.String())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = st.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Delete(s.ID.String()))
	_, err = st.Get(s.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(s.ID.String()), ErrNotFound)
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	st := NewStore(20*time.Millisecond, citation.APA)
	s := st.Create()
	time.Sleep(60 * time.Millisecond)

	_, err := st.Get(s.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoticeHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	s := New("")
	logger := s.Logger(base).With("paper", "a.pdf")

	logger.Info("Analyzing paper")
	logger.Warn("No analysis generated", "error", errors.New("quota exceeded"))

	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "WARN", notices[0].Level)
	assert.Equal(t, "No analysis generated", notices[0].Message)
	assert.Equal(t, "a.pdf", notices[0].Attrs["paper"])
	assert.Equal(t, "quota exceeded", notices[0].Attrs["error"])
	assert.Equal(t, s.ID.String(), notices[0].Attrs["session_id"])

	// The base handler only takes errors.
	assert.Empty(t, buf.String())
	logger.Error("Comparison failed")
	assert.Contains(t, buf.String(), "Comparison failed")
	assert.Len(t, s.Notices(), 2)
}
