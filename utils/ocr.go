// utils/ocr.go
package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// OCRResult is the extracted text plus the provider's confidence estimate
type OCRResult struct {
	Text       string
	Confidence float64
}

// OCRClient abstracts text extraction so the pipeline can be tested with a stub
type OCRClient interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (OCRResult, error)
}

// OCRSpaceClient calls the OCR.space parse API. Engine 2 handles receipts better
// than the default.
type OCRSpaceClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func NewOCRSpaceClientFromEnv() (*OCRSpaceClient, error) {
	key := os.Getenv("OCR_SPACE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OCR_SPACE_API_KEY not configured")
	}
	return &OCRSpaceClient{
		APIKey:     key,
		Endpoint:   "https://api.ocr.space/parse/image",
		HTTPClient: HTTPClient,
	}, nil
}

func (c *OCRSpaceClient) ExtractText(ctx context.Context, image []byte, contentType string) (OCRResult, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	encoded := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	form := url.Values{}
	form.Set("base64Image", encoded)
	form.Set("language", "eng")
	form.Set("isOverlayRequired", "false")
	form.Set("detectOrientation", "true")
	form.Set("scale", "true")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to call OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OCRResult{}, fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	var payload struct {
		IsErroredOnProcessing bool     `json:"IsErroredOnProcessing"`
		ErrorMessage          []string `json:"ErrorMessage"`
		ParsedResults         []struct {
			ParsedText string `json:"ParsedText"`
		} `json:"ParsedResults"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return OCRResult{}, fmt.Errorf("failed to decode OCR response: %w", err)
	}
	if payload.IsErroredOnProcessing {
		msg := "OCR processing failed"
		if len(payload.ErrorMessage) > 0 {
			msg = payload.ErrorMessage[0]
		}
		return OCRResult{}, fmt.Errorf("%s", msg)
	}

	text := ""
	if len(payload.ParsedResults) > 0 {
		text = payload.ParsedResults[0].ParsedText
	}
	return OCRResult{Text: strings.TrimSpace(text), Confidence: 0.9}, nil
}

// LooksLikeReceipt is the minimum-viability check before the pipeline bothers
// scoring the text
func LooksLikeReceipt(result OCRResult) bool {
	if len(result.Text) < 10 {
		return false
	}
	if result.Confidence > 0 && result.Confidence < 0.3 {
		return false
	}
	return true
}
