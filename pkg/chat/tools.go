package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/research"
	"github.com/mikeboe/paper-assistant/pkg/research/tools"
	"github.com/mikeboe/paper-assistant/pkg/search"
	"github.com/mikeboe/paper-assistant/pkg/splitter"
)

// snippetLimit caps how much of a paper a search result hands to the agent.
const snippetLimit = 1500

// PaperToolset exposes one session's papers to the agent. It works on a
// snapshot taken when the run starts.
type PaperToolset struct {
	Papers []research.Document
	Style  citation.Style
	TopK   int
}

func NewPaperToolset(papers []research.Document, style citation.Style, topK int) *PaperToolset {
	snapshot := make([]research.Document, len(papers))
	copy(snapshot, papers)
	return &PaperToolset{Papers: snapshot, Style: style, TopK: topK}
}

func (t *PaperToolset) Name() string {
	return "paper_tools"
}

func (t *PaperToolset) Tools(ctx agent.ReadonlyContext) ([]tool.Tool, error) {
	searchTool, err := functiontool.New[SearchPapersArgs, SearchPapersResp](
		functiontool.Config{
			Name:        "search_papers",
			Description: "Search the uploaded research papers with TF-IDF similarity. Returns the best matching papers with query words marked.",
		},
		t.searchPapersTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search tool: %w", err)
	}

	citationsTool, err := functiontool.New[ListCitationsArgs, ListCitationsResp](
		functiontool.Config{
			Name:        "list_citations",
			Description: "List the parenthetical citations found in an uploaded paper, labelled with a citation style.",
		},
		t.listCitationsTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create citations tool: %w", err)
	}

	arxivTool, err := functiontool.New[SearchArxivArgs, SearchArxivResp](
		functiontool.Config{
			Name:        "search_arxiv",
			Description: "Search arXiv for papers. Supports arXiv query syntax such as ti:, au: and all:.",
		},
		t.searchArxivTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create arxiv tool: %w", err)
	}

	return []tool.Tool{searchTool, citationsTool, arxivTool}, nil
}

// --- Tool Implementations ---

type SearchPapersArgs struct {
	Query string `json:"query" description:"The search query"`
	TopK  int    `json:"topK,omitempty" description:"Number of results to return (default 5)"`
}

type SearchPapersResp struct {
	Results string `json:"results"`
}

func (t *PaperToolset) searchPapersTool(ctx tool.Context, args SearchPapersArgs) (SearchPapersResp, error) {
	return t.SearchPapers(ctx, args)
}

func (t *PaperToolset) SearchPapers(ctx context.Context, args SearchPapersArgs) (SearchPapersResp, error) {
	if args.TopK <= 0 {
		args.TopK = t.TopK
	}
	slog.Info("Search papers", "query", args.Query, "topK", args.TopK, "papers", len(t.Papers))

	results, err := research.SearchPapers(t.Papers, args.Query, args.TopK)
	if err != nil {
		return SearchPapersResp{}, fmt.Errorf("failed to search papers: %w", err)
	}

	formatted := make([]string, 0, len(results))
	for _, r := range results {
		// Cut the plain text before marking so no tag is split.
		snippet, cut := splitter.Truncate(t.Papers[r.Index].Content, snippetLimit)
		snippet = search.Highlight(snippet, args.Query)
		if cut {
			snippet += "..."
		}
		formatted = append(formatted, fmt.Sprintf("[Paper]: %s\n[Score]: %.3f\n[Content]: %s", r.Name, r.Score, snippet))
	}
	return SearchPapersResp{Results: strings.Join(formatted, "\n\n")}, nil
}

type ListCitationsArgs struct {
	Paper string `json:"paper" description:"Name of the uploaded paper"`
	Style string `json:"style,omitempty" description:"APA, MLA or Chicago (default: the session style)"`
}

type ListCitationsResp struct {
	Citations []string `json:"citations"`
}

func (t *PaperToolset) listCitationsTool(ctx tool.Context, args ListCitationsArgs) (ListCitationsResp, error) {
	return t.ListCitations(ctx, args)
}

func (t *PaperToolset) ListCitations(ctx context.Context, args ListCitationsArgs) (ListCitationsResp, error) {
	style := t.Style
	if args.Style != "" {
		parsed, err := citation.ParseStyle(args.Style)
		if err != nil {
			return ListCitationsResp{}, err
		}
		style = parsed
	}

	for _, p := range t.Papers {
		if p.Name == args.Paper {
			return ListCitationsResp{Citations: citation.FormatAll(citation.Extract(p.Content), style)}, nil
		}
	}
	return ListCitationsResp{}, fmt.Errorf("no paper named %q", args.Paper)
}

type SearchArxivArgs struct {
	Query      string `json:"query" description:"The arXiv search query"`
	MaxResults int    `json:"maxResults,omitempty" description:"Number of results to return (default 5)"`
}

type SearchArxivResp struct {
	Results string `json:"results"`
}

func (t *PaperToolset) searchArxivTool(ctx tool.Context, args SearchArxivArgs) (SearchArxivResp, error) {
	return t.SearchArxiv(ctx, args)
}

func (t *PaperToolset) SearchArxiv(ctx context.Context, args SearchArxivArgs) (SearchArxivResp, error) {
	entries, err := tools.SearchArxiv(ctx, args.Query, args.MaxResults)
	if err != nil {
		return SearchArxivResp{}, err
	}
	return SearchArxivResp{Results: tools.FormatEntries(args.Query, entries)}, nil
}
