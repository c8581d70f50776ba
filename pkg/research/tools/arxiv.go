package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// arxivAPIBase is the Atom query endpoint. Tests point it at a local server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivEntry struct to hold arXiv entry data
type ArxivEntry struct {
	ID        string      `xml:"id" json:"id"`
	Title     string      `xml:"title" json:"title"`
	Summary   string      `xml:"summary" json:"summary"`
	Published string      `xml:"published" json:"published"`
	Authors   []string    `xml:"author>name" json:"authors,omitempty"`
	Link      []ArxivLink `xml:"link" json:"-"`
}

// ArxivLink struct to hold arXiv link data
type ArxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

// ArxivFeed struct to hold the entire arXiv feed
type ArxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []ArxivEntry `xml:"entry"`
}

// PDFLink returns the entry's PDF link, or "" when the feed has none.
func (e ArxivEntry) PDFLink() string {
	for _, link := range e.Link {
		if link.Type == "application/pdf" {
			return link.Href
		}
	}
	return ""
}

// SearchArxiv queries the arXiv API. Titles and summaries come back with the
// feed's line wrapping collapsed.
func SearchArxiv(ctx context.Context, query string, maxResults int) ([]ArxivEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("arxiv query must not be empty")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Add("search_query", query)
	params.Add("max_results", strconv.Itoa(maxResults))
	params.Add("start", "0")
	apiURL := arxivAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("arXiv request made", "query", query, "max_results", maxResults, "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("arXiv returned non-200 status code", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("API returned non-200 status code: %d", resp.StatusCode)
	}

	var feed ArxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal XML: %w", err)
	}

	for i := range feed.Entry {
		feed.Entry[i].Title = strings.Join(strings.Fields(feed.Entry[i].Title), " ")
		feed.Entry[i].Summary = strings.Join(strings.Fields(feed.Entry[i].Summary), " ")
	}
	return feed.Entry, nil
}

// FormatEntries renders entries as the markdown digest the assistant reads.
func FormatEntries(query string, entries []ArxivEntry) string {
	if len(entries) == 0 {
		return "No results found for query: " + query
	}

	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "# Title: %s\n", entry.Title)
		fmt.Fprintf(&sb, "## Summary: %s\n", entry.Summary)
		fmt.Fprintf(&sb, "## Published: %s\n", entry.Published)
		if link := entry.PDFLink(); link != "" {
			fmt.Fprintf(&sb, "## PDF Link: %s\n", link)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
