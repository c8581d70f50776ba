package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// TextSplitter wraps the langchaingo text splitter
type TextSplitter struct {
	splitter textsplitter.TextSplitter
}

// NewRecursiveCharacterTextSplitter creates a new recursive character text splitter
func NewRecursiveCharacterTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	return &TextSplitter{splitter: ts}
}

// SplitText splits text into chunks
func (ts *TextSplitter) SplitText(text string) ([]string, error) {
	return ts.splitter.SplitText(text)
}

// Truncate returns the longest prefix of text that fits in limit characters
// and ends on a paragraph, line or word boundary the splitter finds. The bool
// reports whether anything was dropped. A limit of zero or less disables
// truncation.
func Truncate(text string, limit int) (string, bool) {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text, false
	}

	chunks, err := NewRecursiveCharacterTextSplitter(limit, 0).SplitText(text)
	if err != nil {
		chunks = nil
	}

	// Chunks are substrings of text in order; extend the prefix chunk by chunk.
	end := 0
	for _, chunk := range chunks {
		i := strings.Index(text[end:], chunk)
		if i < 0 {
			break
		}
		next := end + i + len(chunk)
		if utf8.RuneCountInString(text[:next]) > limit {
			break
		}
		end = next
	}

	if end == 0 {
		// Safe truncation using runes to avoid invalid UTF-8
		return string(runes[:limit]), true
	}
	return text[:end], true
}
