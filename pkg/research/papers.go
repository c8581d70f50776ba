package research

import (
	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/search"
)

// SearchResult is a document ranked against a query.
type SearchResult struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Highlighted string  `json:"highlighted"`
	// Index is the position of the document in the searched slice.
	Index       int     `json:"-"`
}

// SearchPapers ranks docs against query by TF-IDF cosine similarity and
// returns the best topK with query words marked in the content.
func SearchPapers(docs []Document, query string, topK int) ([]SearchResult, error) {
	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = d.Content
	}

	hits, err := search.Search(query, corpus, topK)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		doc := docs[h.Index]
		results[i] = SearchResult{
			Name:        doc.Name,
			Score:       h.Score,
			Highlighted: search.Highlight(doc.Content, query),
			Index:       h.Index,
		}
	}
	return results, nil
}

// PaperCitations are the formatted citations found in one paper.
type PaperCitations struct {
	Name      string   `json:"name"`
	Citations []string `json:"citations"`
}

// CitationsByPaper extracts and formats the citations of every document,
// keeping document order.
func CitationsByPaper(docs []Document, style citation.Style) []PaperCitations {
	out := make([]PaperCitations, len(docs))
	for i, d := range docs {
		out[i] = PaperCitations{
			Name:      d.Name,
			Citations: citation.FormatAll(citation.Extract(d.Content), style),
		}
	}
	return out
}
