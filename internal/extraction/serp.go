package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/onego-ai/onego/internal/config"
)

const serpResultCount = "10"

type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type KnowledgeGraph struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type AnswerBox struct {
	Title  string `json:"title"`
	Answer string `json:"answer"`
}

type RelatedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SearchResponse is the subset of the SerpAPI search payload we render.
type SearchResponse struct {
	OrganicResults   []OrganicResult   `json:"organic_results,omitempty"`
	KnowledgeGraph   *KnowledgeGraph   `json:"knowledge_graph,omitempty"`
	AnswerBox        *AnswerBox        `json:"answer_box,omitempty"`
	RelatedQuestions []RelatedQuestion `json:"related_questions,omitempty"`
	Error            string            `json:"error,omitempty"`
}

type SerpClient struct {
	http   *resty.Client
	apiKey string
}

func NewSerpClient(cfg config.ExtractionConfig) *SerpClient {
	return &SerpClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.SerpBaseURL, "/")).
			SetTimeout(cfg.Timeout),
		apiKey: cfg.SerpAPIKey,
	}
}

func (c *SerpClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *SerpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  "google",
			"q":       query,
			"api_key": c.apiKey,
			"num":     serpResultCount,
		}).
		SetResult(&out).
		Get("/search.json")
	if err != nil {
		return nil, fmt.Errorf("calling serpapi: %w: %w", ErrUpstream, withoutURL(err))
	}
	if resp.IsError() {
		return nil, fmt.Errorf("serpapi returned status %d: %w", resp.StatusCode(), ErrUpstream)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error %q: %w", out.Error, ErrUpstream)
	}
	return &out, nil
}
