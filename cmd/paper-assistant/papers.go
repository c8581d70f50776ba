package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikeboe/paper-assistant/pkg/pdf"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

// loadPapers reads PDFs through the extractor and anything else as plain
// text. PDFs that cannot be parsed are skipped with a warning; papers without
// text are kept empty.
func loadPapers(ctx context.Context, paths []string) ([]research.Document, error) {
	var ocr *pdf.OCRClient
	if cfg.MistralAPIKey != "" {
		ocr = pdf.NewOCRClient(cfg.MistralAPIKey)
	}
	extractor := pdf.NewExtractor(ocr)

	papers := make([]research.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		name := filepath.Base(path)
		text := string(data)
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			text, err = extractor.Extract(ctx, name, data)
			if err != nil {
				slog.Warn("Could not extract text", "paper", name, "error", err)
				continue
			}
		}
		if strings.TrimSpace(text) == "" {
			slog.Warn("No text found in paper", "paper", name)
		}
		papers = append(papers, research.Document{Name: name, Content: text})
	}

	if len(papers) == 0 {
		return nil, fmt.Errorf("no readable papers among %d files", len(paths))
	}
	return papers, nil
}
