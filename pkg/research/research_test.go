package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/clients"
)

// fakeModel answers prompts from a script and records every call.
type fakeModel struct {
	mu      sync.Mutex
	answer  func(prompt string) (string, error)
	prompts []string
	history [][]clients.Turn
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Generate(_ context.Context, history []clients.Turn, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.history = append(f.history, history)
	return f.answer(prompt)
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func echoModel(answer string) *fakeModel {
	return &fakeModel{answer: func(string) (string, error) { return answer, nil }}
}

func newTestAnalyzer(llm clients.ChatModel) *Analyzer {
	return NewAnalyzer(Config{ContentLimit: 1000, SummaryCacheTTL: time.Hour}, llm)
}

func TestAnalyzeAllPartialFailure(t *testing.T) {
	llm := &fakeModel{answer: func(prompt string) (string, error) {
		if strings.Contains(prompt, "bad content") {
			return "", errors.New("quota exceeded")
		}
		return "analysis", nil
	}}
	a := newTestAnalyzer(llm)

	papers := []Document{
		{Name: "a.pdf", Content: "good content"},
		{Name: "b.pdf", Content: "bad content"},
		{Name: "c.pdf", Content: "good content too"},
	}

	var progress []float64
	var failed []string
	var streamed []string
	obs := Observer{
		OnProgress: func(f float64) { progress = append(progress, f) },
		OnResult:   func(r AnalysisResult) { streamed = append(streamed, r.Name) },
		OnFailure: func(d Document, err error) {
			assert.ErrorIs(t, err, ErrModelInvocation)
			failed = append(failed, d.Name)
		},
	}

	conv := &Conversation{}
	results := a.AnalyzeAll(context.Background(), conv, papers, AnalysisRequest{}, obs)

	require.Len(t, results, 2)
	assert.Equal(t, "a.pdf", results[0].Name)
	assert.Equal(t, "c.pdf", results[1].Name)
	assert.Equal(t, "good content", results[0].Content)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, streamed)
	assert.Equal(t, []string{"b.pdf"}, failed)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1}, progress, 1e-9)

	// Only the two successful exchanges reach the history.
	assert.Equal(t, 4, conv.Len())
	assert.Equal(t, 3, llm.calls())
}

func TestAnalyzeAllSharesHistory(t *testing.T) {
	llm := echoModel("ok")
	a := newTestAnalyzer(llm)
	conv := &Conversation{}

	a.AnalyzeAll(context.Background(), conv, []Document{
		{Name: "a", Content: "first"},
		{Name: "b", Content: "second"},
	}, AnalysisRequest{}, Observer{})

	require.Len(t, llm.history, 2)
	assert.Empty(t, llm.history[0])
	require.Len(t, llm.history[1], 2)
	assert.Equal(t, clients.RoleUser, llm.history[1][0].Role)
	assert.Equal(t, clients.RoleModel, llm.history[1][1].Role)
	assert.Equal(t, "ok", llm.history[1][1].Text)
}

func TestAnalyzeAllEmptyResponseIsFailure(t *testing.T) {
	a := newTestAnalyzer(echoModel("   "))

	var failures int
	results := a.AnalyzeAll(context.Background(), &Conversation{}, []Document{{Name: "a", Content: "x"}},
		AnalysisRequest{}, Observer{OnFailure: func(_ Document, err error) {
			assert.ErrorIs(t, err, clients.ErrEmptyResponse)
			failures++
		}})

	assert.Empty(t, results)
	assert.Equal(t, 1, failures)
}

func TestAnalysisPrompt(t *testing.T) {
	a := NewAnalyzer(Config{ContentLimit: 10}, echoModel("x"))

	t.Run("truncated", func(t *testing.T) {
		prompt := a.AnalysisPrompt(Document{Content: strings.Repeat("abcdefgh ", 10)},
			AnalysisRequest{FocusAreas: []string{"Methodology", "Key Findings"}, OutputFormat: FormatBulletPoints})

		assert.True(t, strings.HasPrefix(prompt,
			"Analyze the following research paper content. Focus on: Methodology, Key Findings. Format the output as Bullet Points.\n\n"))
		assert.True(t, strings.HasSuffix(prompt, "..."))
		body := strings.SplitN(prompt, "\n\n", 2)[1]
		assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(body, "..."))), 10)
	})

	t.Run("heading followed by long paragraph", func(t *testing.T) {
		a := NewAnalyzer(Config{ContentLimit: 1000}, echoModel("x"))
		body := strings.Repeat("self attention ", 170)
		prompt := a.AnalysisPrompt(Document{Content: "Attention Is All You Need\n\n" + body}, AnalysisRequest{})

		assert.Contains(t, prompt, "Format the output as Text.\n\nAttention Is All You Need\n\nself attention")
		assert.True(t, strings.HasSuffix(prompt, "..."))
	})

	t.Run("short content and defaults", func(t *testing.T) {
		prompt := a.AnalysisPrompt(Document{Content: "tiny"}, AnalysisRequest{})
		assert.Contains(t, prompt, "Focus on: "+strings.Join(DefaultFocusAreas, ", "))
		assert.Contains(t, prompt, "Format the output as Text.")
		assert.True(t, strings.HasSuffix(prompt, "\n\ntiny"))
	})
}

func TestSplitSections(t *testing.T) {
	text := "Overview of both papers.\n\n" +
		"## Key similarities\nBoth use transformers.\n\n" +
		"They also share datasets.\n\n" +
		"## Notable differences\nA is supervised.\n\n" +
		"## Potential areas for future research\nScale up."

	got := SplitSections(text)
	assert.Equal(t, "Overview of both papers.", got.Overview)
	assert.Equal(t, "## Key similarities\nBoth use transformers.\n\nThey also share datasets.", got.Similarities)
	assert.Equal(t, "## Notable differences\nA is supervised.", got.Differences)
	assert.Equal(t, "## Potential areas for future research\nScale up.", got.FutureResearch)
}

func TestSplitSectionsNeverMovesBack(t *testing.T) {
	text := "intro\n\nNotable differences: many\n\nrecall the key similarities from above"

	got := SplitSections(text)
	assert.Equal(t, "intro", got.Overview)
	assert.Empty(t, got.Similarities)
	assert.Equal(t, "Notable differences: many\n\nrecall the key similarities from above", got.Differences)
	assert.Empty(t, got.FutureResearch)
}

func TestSplitSectionsNoMarkers(t *testing.T) {
	got := SplitSections("just one\n\nlong overview")
	assert.Equal(t, "just one\n\nlong overview", got.Overview)
	assert.Empty(t, got.Similarities)
	assert.Empty(t, got.Differences)
	assert.Empty(t, got.FutureResearch)
}

func TestCompare(t *testing.T) {
	results := []AnalysisResult{{Name: "a.pdf"}, {Name: "b.pdf"}}

	t.Run("requires two results", func(t *testing.T) {
		llm := echoModel("x")
		_, err := newTestAnalyzer(llm).Compare(context.Background(), &Conversation{}, results[:1])
		assert.ErrorIs(t, err, ErrInsufficientInput)
		assert.Zero(t, llm.calls())
	})

	t.Run("splits answer", func(t *testing.T) {
		llm := echoModel("Overview\n\nKey similarities: both\n\nNotable differences: none")
		got, err := newTestAnalyzer(llm).Compare(context.Background(), &Conversation{}, results)
		require.NoError(t, err)
		assert.Equal(t, "Overview", got.Overview)
		assert.Equal(t, "Key similarities: both", got.Similarities)
		assert.Equal(t, "Notable differences: none", got.Differences)
		assert.Contains(t, llm.prompts[0], "a.pdf, b.pdf")
	})

	t.Run("model failure", func(t *testing.T) {
		llm := &fakeModel{answer: func(string) (string, error) { return "", errors.New("boom") }}
		_, err := newTestAnalyzer(llm).Compare(context.Background(), &Conversation{}, results)
		assert.ErrorIs(t, err, ErrModelInvocation)
	})
}

func TestParseRelatedPapers(t *testing.T) {
	output := "Here are some papers:\n" +
		"- [Paper A](https://a.example/1)\n" +
		"- broken line\n" +
		"  - [Paper B](https://b.example/2)\n" +
		"* [Not a dash](https://c.example)\n" +
		"- [Empty]()\n"

	got := ParseRelatedPapers(output)
	assert.Equal(t, []RelatedPaper{
		{Title: "Paper A", URL: "https://a.example/1"},
		{Title: "Paper B", URL: "https://b.example/2"},
	}, got)
}

func TestFindRelated(t *testing.T) {
	results := []AnalysisResult{{Name: "a.pdf", Analysis: "about transformers"}}

	t.Run("no results", func(t *testing.T) {
		_, err := newTestAnalyzer(echoModel("x")).FindRelated(context.Background(), nil, nil)
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("parses list", func(t *testing.T) {
		llm := echoModel("- [Attention Is All You Need](https://arxiv.org/abs/1706.03762)")
		got, err := newTestAnalyzer(llm).FindRelated(context.Background(), &Conversation{}, results)
		require.NoError(t, err)
		assert.Equal(t, []RelatedPaper{{Title: "Attention Is All You Need", URL: "https://arxiv.org/abs/1706.03762"}}, got)
		assert.Contains(t, llm.prompts[0], "Paper: a.pdf\nAnalysis: about transformers")
	})

	t.Run("unparseable", func(t *testing.T) {
		got, err := newTestAnalyzer(echoModel("I cannot help.")).FindRelated(context.Background(), &Conversation{}, results)
		assert.ErrorIs(t, err, ErrParse)
		assert.Empty(t, got)
	})
}

func TestAsk(t *testing.T) {
	llm := echoModel("42")
	a := newTestAnalyzer(llm)
	conv := &Conversation{}

	_, err := a.Ask(context.Background(), conv, "   ")
	assert.ErrorIs(t, err, ErrInvalidQuestion)
	assert.Zero(t, llm.calls())

	answer, err := a.Ask(context.Background(), conv, "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
	assert.Equal(t, 2, conv.Len())
}

func TestSummarizeCaches(t *testing.T) {
	llm := echoModel("short summary")
	a := newTestAnalyzer(llm)

	for range 3 {
		summary, err := a.Summarize(context.Background(), "paper body")
		require.NoError(t, err)
		assert.Equal(t, "short summary", summary)
	}
	assert.Equal(t, 1, llm.calls())
	assert.Empty(t, llm.history[0])

	_, err := a.Summarize(context.Background(), "another body")
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls())
}

func TestSummarizeFailureNotCached(t *testing.T) {
	fail := true
	llm := &fakeModel{answer: func(string) (string, error) {
		if fail {
			return "", errors.New("unavailable")
		}
		return "summary", nil
	}}
	a := newTestAnalyzer(llm)

	_, err := a.Summarize(context.Background(), "body")
	assert.ErrorIs(t, err, ErrModelInvocation)

	fail = false
	summary, err := a.Summarize(context.Background(), "body")
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)
}

func TestExport(t *testing.T) {
	got := Export([]AnalysisResult{
		{Name: "a.pdf", Analysis: "first"},
		{Name: "b.pdf", Analysis: "second"},
	})
	assert.Equal(t, "Analysis of a.pdf:\nfirst\n\nAnalysis of b.pdf:\nsecond\n\n", got)
	assert.Empty(t, Export(nil))

	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "analysis_results_20240305-140709.txt", ExportFilename(ts))
}

func TestConversationNilSafe(t *testing.T) {
	var conv *Conversation
	conv.Append("p", "a")
	assert.Nil(t, conv.History())
	assert.Zero(t, conv.Len())

	c := &Conversation{}
	c.Append("p", "a")
	h := c.History()
	h[0].Text = "mutated"
	assert.Equal(t, "p", c.History()[0].Text)
	c.Reset()
	assert.Zero(t, c.Len())
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseOutputFormat("Haiku")
	assert.Error(t, err)
}

func TestSearchPapers(t *testing.T) {
	docs := []Document{
		{Name: "cooking.pdf", Content: "Recipes for bread and pasta."},
		{Name: "nlp.pdf", Content: "Transformers changed language modeling."},
	}

	results, err := SearchPapers(docs, "transformers language", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "nlp.pdf", results[0].Name)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "<mark>Transformers</mark> changed <mark>language</mark> modeling.", results[0].Highlighted)

	_, err = SearchPapers(nil, "anything", 5)
	assert.Error(t, err)
}

func TestCitationsByPaper(t *testing.T) {
	docs := []Document{
		{Name: "a.pdf", Content: "As shown (Smith, 2020) and (Lee et al., 2019)."},
		{Name: "b.pdf", Content: "No references here."},
	}

	got := CitationsByPaper(docs, citation.MLA)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"MLA style: (Smith, 2020)", "MLA style: (Lee et al., 2019)"}, got[0].Citations)
	assert.Empty(t, got[1].Citations)
}
