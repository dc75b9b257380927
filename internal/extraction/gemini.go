package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/onego-ai/onego/internal/config"
)

const pdfMimeType = "application/pdf"

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient reads PDF documents through the generateContent endpoint.
type GeminiClient struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewGeminiClient(cfg config.ExtractionConfig) *GeminiClient {
	return &GeminiClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.GeminiBaseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout),
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.GeminiModel,
	}
}

func (c *GeminiClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ExtractDocument sends the PDF inline with prompt and returns the first
// candidate's text.
func (c *GeminiClient) ExtractDocument(ctx context.Context, pdf []byte, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: pdfMimeType,
					Data:     base64.StdEncoding.EncodeToString(pdf),
				}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 8192,
		},
	}

	var out geminiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&out).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w: %w", ErrUpstream, withoutURL(err))
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini returned status %d: %w", resp.StatusCode(), ErrUpstream)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response has no candidates: %w", ErrUpstream)
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text: %w", ErrUpstream)
	}
	return text, nil
}
