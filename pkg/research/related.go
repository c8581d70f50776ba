package research

import (
	"context"
	"fmt"
	"strings"
)

// RelatedPrompt builds the related-reading prompt from prior analyses.
func RelatedPrompt(results []AnalysisResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Paper: %s\nAnalysis: %s", r.Name, r.Analysis)
	}

	return fmt.Sprintf(`Based on the following analysis of research papers, suggest 5 related research papers that would be relevant for further reading. For each suggestion, provide the title and a URL where it can be found (use Google Scholar links if available).

%s

Please format your response as a list, with each item in the following format:
- [Paper Title](URL)
`, strings.Join(parts, "\n\n"))
}

// FindRelated asks the model for further reading based on results. When the
// answer contains no well-formed suggestions the returned error wraps
// ErrParse and the list is empty.
func (a *Analyzer) FindRelated(ctx context.Context, conv *Conversation, results []AnalysisResult) ([]RelatedPaper, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	response, err := a.invoke(ctx, conv, RelatedPrompt(results))
	if err != nil {
		a.Logger.Warn("Finding related papers failed", "error", err)
		return nil, err
	}

	papers := ParseRelatedPapers(response)
	if len(papers) == 0 {
		a.Logger.Warn("No related papers found in model output", "response_length", len(response))
		return []RelatedPaper{}, fmt.Errorf("%w: no \"- [title](url)\" lines in %d characters of output", ErrParse, len(response))
	}
	return papers, nil
}

// ParseRelatedPapers extracts "- [Title](URL)" bullet lines. Lines that do
// not have exactly that shape are skipped.
func ParseRelatedPapers(output string) []RelatedPaper {
	papers := []RelatedPaper{}
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "-") {
			continue
		}

		parts := strings.Split(line, "](")
		if len(parts) != 2 {
			continue
		}

		title := strings.Trim(strings.TrimSpace(parts[0]), "- [")
		url := strings.Trim(strings.TrimSpace(parts[1]), ")")
		if title == "" || url == "" {
			continue
		}
		papers = append(papers, RelatedPaper{Title: title, URL: url})
	}
	return papers
}
