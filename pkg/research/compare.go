package research

import (
	"context"
	"fmt"
	"strings"
)

// Section is a bucket of a comparative analysis. Sections only ever advance
// in declaration order.
type Section int

const (
	SectionOverview Section = iota
	SectionSimilarities
	SectionDifferences
	SectionFutureResearch
)

// sectionMarkers maps each section after the overview to the phrase that
// opens it in model output.
var sectionMarkers = []struct {
	section Section
	marker  string
}{
	{SectionSimilarities, "key similarities"},
	{SectionDifferences, "notable differences"},
	{SectionFutureResearch, "potential areas for future research"},
}

// ComparePrompt builds the comparison prompt for the given paper titles.
func ComparePrompt(titles []string) string {
	return fmt.Sprintf(`Compare and contrast the following papers: %s.
Provide a brief overview of each paper, then discuss:
1. Key similarities between the papers
2. Notable differences between the papers
3. Potential areas for future research based on these papers

Format your response with clear headings for each section, but do not repeat the headings at the end.`,
		strings.Join(titles, ", "))
}

// Compare asks the model for one comparative report across results and
// splits it into sections.
func (a *Analyzer) Compare(ctx context.Context, conv *Conversation, results []AnalysisResult) (*ComparativeAnalysis, error) {
	if len(results) < 2 {
		return nil, ErrInsufficientInput
	}

	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Name
	}

	a.Logger.Info("Comparing papers", "papers", titles)
	comparison, err := a.invoke(ctx, conv, ComparePrompt(titles))
	if err != nil {
		a.Logger.Warn("Comparative analysis failed", "error", err)
		return nil, err
	}

	sections := SplitSections(comparison)
	return &sections, nil
}

// SplitSections splits model output on blank lines and routes each segment
// to the current section. A segment containing the marker phrase of a later
// section advances the current section; there is no way back.
func SplitSections(text string) ComparativeAnalysis {
	var buckets [4]strings.Builder
	current := SectionOverview

	for _, segment := range strings.Split(text, "\n\n") {
		lower := strings.ToLower(segment)
		for _, m := range sectionMarkers {
			if m.section > current && strings.Contains(lower, m.marker) {
				current = m.section
				break
			}
		}
		buckets[current].WriteString(segment)
		buckets[current].WriteString("\n\n")
	}

	return ComparativeAnalysis{
		Overview:       strings.TrimSpace(buckets[SectionOverview].String()),
		Similarities:   strings.TrimSpace(buckets[SectionSimilarities].String()),
		Differences:    strings.TrimSpace(buckets[SectionDifferences].String()),
		FutureResearch: strings.TrimSpace(buckets[SectionFutureResearch].String()),
	}
}
