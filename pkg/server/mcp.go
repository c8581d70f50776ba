package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

type SearchPapersInput struct {
	SessionID string `json:"session_id" jsonschema:"the session whose papers are searched"`
	Query     string `json:"query" jsonschema:"the search query"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of results to return, default 5"`
}

type SearchPapersOutput struct {
	Results []research.SearchResult `json:"results"`
}

type ExtractCitationsInput struct {
	SessionID string `json:"session_id" jsonschema:"the session whose papers are scanned"`
	Style     string `json:"style,omitempty" jsonschema:"APA, MLA or Chicago; defaults to the session style"`
}

type ExtractCitationsOutput struct {
	Style  citation.Style            `json:"style"`
	Papers []research.PaperCitations `json:"papers"`
}

// MCPHandler serves the paper tools over the streamable HTTP transport.
func (h *Handler) MCPHandler() http.Handler {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "paper-assistant-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_papers",
		Description: "Rank a session's uploaded papers against a query by TF-IDF similarity.",
	}, h.mcpSearchPapers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_citations",
		Description: "List the parenthetical citations in each of a session's papers.",
	}, h.mcpExtractCitations)

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (h *Handler) mcpSearchPapers(ctx context.Context, req *mcp.CallToolRequest, in SearchPapersInput) (*mcp.CallToolResult, SearchPapersOutput, error) {
	sess, err := h.Service.Store.Get(in.SessionID)
	if err != nil {
		return nil, SearchPapersOutput{}, fmt.Errorf("session %q: %w", in.SessionID, err)
	}
	sess.Lock()
	defer sess.Unlock()

	results, err := h.Service.Search(sess, in.Query, in.TopK)
	if err != nil {
		return nil, SearchPapersOutput{}, err
	}
	return nil, SearchPapersOutput{Results: results}, nil
}

func (h *Handler) mcpExtractCitations(ctx context.Context, req *mcp.CallToolRequest, in ExtractCitationsInput) (*mcp.CallToolResult, ExtractCitationsOutput, error) {
	sess, err := h.Service.Store.Get(in.SessionID)
	if err != nil {
		return nil, ExtractCitationsOutput{}, fmt.Errorf("session %q: %w", in.SessionID, err)
	}
	sess.Lock()
	defer sess.Unlock()

	style := sess.CitationStyle
	if in.Style != "" {
		if style, err = citation.ParseStyle(in.Style); err != nil {
			return nil, ExtractCitationsOutput{}, err
		}
	}
	return nil, ExtractCitationsOutput{Style: style, Papers: h.Service.Citations(sess, style)}, nil
}
