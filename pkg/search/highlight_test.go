package search

import "testing"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"whole word only", "The cat sat", "cat", "The <mark>cat</mark> sat"},
		{"no substring match", "The category of cats", "cat", "The category of cats"},
		{"case insensitive", "Cat and CAT", "cat", "<mark>Cat</mark> and <mark>CAT</mark>"},
		{"multiple tokens", "neural networks learn", "Neural learn", "<mark>neural</mark> networks <mark>learn</mark>"},
		{"regex characters are literal", "value a.b and axb", "a.b", "value <mark>a.b</mark> and axb"},
		{"empty query", "unchanged text", "", "unchanged text"},
		{"non-ascii word", "Le café est chaud", "café", "Le <mark>café</mark> est chaud"},
		{"non-ascii case folding", "CAFÉ crème", "café", "<mark>CAFÉ</mark> crème"},
		{"non-ascii letter is part of the word", "cafés", "caf", "cafés"},
		{"repeated word", "cat cat", "cat", "<mark>cat</mark> <mark>cat</mark>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.query); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
			}
		})
	}
}
