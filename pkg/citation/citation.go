// Package citation pulls parenthetical, year-bearing references out of raw
// paper text and labels them with a citation style.
package citation

import (
	"fmt"
	"regexp"
	"strings"
)

// citationRe matches "(...)" with no nested parentheses and at least one
// four-digit run inside, e.g. "(Smith et al., 2020)".
var citationRe = regexp.MustCompile(`\([^()]*\d{4}[^()]*\)`)

// Citation is a raw parenthetical reference as found in the text.
type Citation struct {
	Raw string `json:"raw"`
}

// Style is a citation style supported by Format.
type Style string

const (
	APA     Style = "APA"
	MLA     Style = "MLA"
	Chicago Style = "Chicago"
)

// Styles lists the supported styles in display order.
var Styles = []Style{APA, MLA, Chicago}

// ParseStyle resolves a style name case-insensitively.
func ParseStyle(s string) (Style, error) {
	for _, style := range Styles {
		if strings.EqualFold(strings.TrimSpace(s), string(style)) {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown citation style %q (supported: APA, MLA, Chicago)", s)
}

// Extract returns every citation in text, left to right. Duplicates are kept.
func Extract(text string) []Citation {
	matches := citationRe.FindAllString(text, -1)
	citations := make([]Citation, 0, len(matches))
	for _, m := range matches {
		citations = append(citations, Citation{Raw: m})
	}
	return citations
}

// Format labels a citation with its style. Styles outside Styles leave the
// citation unchanged.
func Format(c Citation, style Style) string {
	switch style {
	case APA, MLA, Chicago:
		return fmt.Sprintf("%s style: %s", style, c.Raw)
	default:
		return c.Raw
	}
}

// FormatAll formats citations in order.
func FormatAll(citations []Citation, style Style) []string {
	formatted := make([]string, len(citations))
	for i, c := range citations {
		formatted[i] = Format(c, style)
	}
	return formatted
}
