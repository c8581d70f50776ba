package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/config"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

var papers = []research.Document{
	{Name: "vision.pdf", Content: "Convolutional networks for image recognition (LeCun, 1998)."},
	{Name: "nlp.pdf", Content: "Attention based language models (Vaswani et al., 2017) and (Devlin, 2019)."},
}

func TestSearchPapersTool(t *testing.T) {
	ts := NewPaperToolset(papers, citation.APA, 1)

	resp, err := ts.SearchPapers(context.Background(), SearchPapersArgs{Query: "language models"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Results, "[Paper]: nlp.pdf\n"))
	assert.Contains(t, resp.Results, "<mark>language</mark> <mark>models</mark>")
	assert.NotContains(t, resp.Results, "vision.pdf")
}

func TestSearchPapersToolWithoutPapers(t *testing.T) {
	_, err := NewPaperToolset(nil, citation.APA, 5).SearchPapers(context.Background(), SearchPapersArgs{Query: "x"})
	assert.Error(t, err)
}

func TestListCitationsTool(t *testing.T) {
	ts := NewPaperToolset(papers, citation.APA, 5)

	resp, err := ts.ListCitations(context.Background(), ListCitationsArgs{Paper: "nlp.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"APA style: (Vaswani et al., 2017)", "APA style: (Devlin, 2019)"}, resp.Citations)

	resp, err = ts.ListCitations(context.Background(), ListCitationsArgs{Paper: "vision.pdf", Style: "chicago"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicago style: (LeCun, 1998)"}, resp.Citations)

	_, err = ts.ListCitations(context.Background(), ListCitationsArgs{Paper: "missing.pdf"})
	assert.Error(t, err)

	_, err = ts.ListCitations(context.Background(), ListCitationsArgs{Paper: "nlp.pdf", Style: "Harvard"})
	assert.Error(t, err)
}

func TestToolsetSnapshotsPapers(t *testing.T) {
	docs := []research.Document{{Name: "a.pdf", Content: "alpha"}}
	ts := NewPaperToolset(docs, citation.APA, 5)
	docs[0].Name = "changed.pdf"
	assert.Equal(t, "a.pdf", ts.Papers[0].Name)
}

func TestNewServiceUnavailable(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"openai provider", config.Config{Provider: "openai", APIKey: "sk"}},
		{"anthropic provider", config.Config{Provider: "anthropic", APIKey: "sk"}},
		{"google without key", config.Config{Provider: "googleai"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(context.Background(), &tt.cfg)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Nil(t, svc)
		})
	}
}

func TestSearchPapersToolSnippetKeepsMarksWhole(t *testing.T) {
	long := []research.Document{
		{Name: "long.pdf", Content: "Sparse Attention\n\n" + strings.Repeat("attention ", 400)},
	}
	ts := NewPaperToolset(long, citation.APA, 1)

	resp, err := ts.SearchPapers(context.Background(), SearchPapersArgs{Query: "attention"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.Results, "</mark>..."))
	assert.Equal(t, strings.Count(resp.Results, "<mark>"), strings.Count(resp.Results, "</mark>"))
	assert.Contains(t, resp.Results, "Sparse <mark>Attention</mark>\n\n<mark>attention</mark>")
}
