package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps every whole-word, case-insensitive occurrence of a query
// token in text with <mark> tags. Tokens are matched literally and word
// boundaries follow Unicode letters and digits, so "café" matches as a word.
func Highlight(text, query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return text
	}

	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`^(?i:` + regexp.QuoteMeta(w) + `)`)
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(text); {
		if isBoundary(text, i) {
			if n := matchAt(patterns, text, i); n > 0 {
				b.WriteString(text[last:i])
				b.WriteString(markOpen)
				b.WriteString(text[i : i+n])
				b.WriteString(markClose)
				i += n
				last = i
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}

	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// matchAt returns the byte length of the first token matching at offset i
// and ending on a word boundary, or 0.
func matchAt(patterns []*regexp.Regexp, text string, i int) int {
	for _, p := range patterns {
		loc := p.FindStringIndex(text[i:])
		if loc != nil && loc[1] > 0 && isBoundary(text, i+loc[1]) {
			return loc[1]
		}
	}
	return 0
}

// isBoundary reports whether offset i sits between a word and a non-word
// rune, treating both ends of text as non-word.
func isBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
