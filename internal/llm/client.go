// Package llm talks to an OpenAI-compatible chat completions endpoint and
// reports every outcome as a Result so callers can fall back deterministically.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/onego-ai/onego/internal/config"
)

const maxErrorBody = 512

// Message is an earlier conversation turn sent between the system prompt
// and the final user prompt.
type Message struct {
	Role    string
	Content string
}

// Request is a chat completion. Most callers send a single turn; History is
// only set for conversations.
type Request struct {
	Model       string
	System      string
	History     []Message
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Generator produces text for a request. Failures are values, not errors.
type Generator interface {
	Generate(ctx context.Context, req Request) Result[string]
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client is the HTTP Generator.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient builds a client for cfg. Outbound calls are throttled by a token
// bucket and retried on transport errors, 429 and 5xx.
func NewClient(cfg config.LLMConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) Generate(ctx context.Context, req Request) Result[string] {
	if err := c.limiter.Wait(ctx); err != nil {
		return Failure[string](KindUnavailable, fmt.Errorf("waiting for rate limiter: %w", err))
	}

	body := chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.History {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return Failure[string](KindUnavailable, fmt.Errorf("calling chat completions: %w", err))
	}
	if resp.IsError() {
		return Result[string]{Err: &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(truncate(resp.String(), maxErrorBody)),
		}}
	}

	if len(out.Choices) == 0 {
		return Failure[string](KindEmpty, errors.New("no choices in response"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return Failure[string](KindEmpty, errors.New("empty completion"))
	}
	return Success(text)
}

// Disabled is the Generator used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) Result[string] {
	return Failure[string](KindUnavailable, errors.New("ai generation is not configured"))
}

// New returns the HTTP client when cfg carries an API key and Disabled otherwise.
func New(cfg config.LLMConfig) Generator {
	if cfg.APIKey == "" {
		return Disabled{}
	}
	return NewClient(cfg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
