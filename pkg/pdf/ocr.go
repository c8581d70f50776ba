package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// mistralOCRURL is the OCR endpoint. Tests point it at a local server.
var mistralOCRURL = "https://api.mistral.ai/v1/ocr"

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

// OCRClient reads scanned PDFs through the Mistral OCR API.
type OCRClient struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewOCRClient(apiKey string) *OCRClient {
	return &OCRClient{
		APIKey:     apiKey,
		Model:      "mistral-ocr-latest",
		HTTPClient: &http.Client{},
	}
}

// Recognize sends the PDF inline as a base64 data URL and returns the
// markdown of every page, separated by blank lines.
func (c *OCRClient) Recognize(ctx context.Context, data []byte) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	reqBody := map[string]interface{}{
		"model": c.Model,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
		"include_image_base64": false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mistralOCRURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status: %s, body: %s", resp.Status, string(body))
	}

	var ocr ocrResponse
	if err := json.Unmarshal(body, &ocr); err != nil {
		return "", fmt.Errorf("failed to unmarshal OCR response: %w", err)
	}

	pages := make([]string, 0, len(ocr.Pages))
	for _, page := range ocr.Pages {
		if text := strings.TrimSpace(page.Markdown); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
