// Package pdf recovers plain text from uploaded PDF files.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// ErrExtraction marks a file whose text could not be recovered.
var ErrExtraction = errors.New("text extraction failed")

// Extractor turns PDF bytes into text. OCR is optional and only consulted
// when the PDF has no text layer.
type Extractor struct {
	OCR    *OCRClient
	Logger *slog.Logger
}

func NewExtractor(ocr *OCRClient) *Extractor {
	return &Extractor{OCR: ocr, Logger: slog.Default()}
}

// Extract returns the concatenated page text of data. A PDF without a text
// layer yields "" and no error unless OCR is configured and fails.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (text string, err error) {
	// the PDF reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %s: %v", ErrExtraction, name, r)
		}
	}()

	docs, err := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data))).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, name, err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	text = strings.TrimSpace(sb.String())

	if text == "" && e.OCR != nil {
		e.Logger.Info("No text layer, falling back to OCR", "file", name, "pages", len(docs))
		text, err = e.OCR.Recognize(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: ocr: %w", ErrExtraction, name, err)
		}
	}

	e.Logger.Info("Extracted text", "file", name, "pages", len(docs), "characters", len(text))
	return text, nil
}
