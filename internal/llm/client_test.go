package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onego-ai/onego/internal/config"
)

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	}
}

func TestClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Generated module text  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	res := c.Generate(context.Background(), Request{
		Model:       "llama3-70b-8192",
		System:      "You write courses.",
		Prompt:      "Write a module.",
		Temperature: 0.7,
		MaxTokens:   3000,
	})

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "Generated module text", res.Value)
	assert.Equal(t, "llama3-70b-8192", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, 3000, got.MaxTokens)
}

func TestClient_Generate_HistoryPrecedesPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Sure."}}]}`))
	}))
	defer srv.Close()

	res := NewClient(testConfig(srv.URL)).Generate(context.Background(), Request{
		System: "You are a tutor.",
		History: []Message{
			{Role: "user", Content: "What is empathy?"},
			{Role: "assistant", Content: "Understanding how a customer feels."},
		},
		Prompt: "Give me an example.",
	})

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	require.Len(t, got.Messages, 4)
	roles := []string{got.Messages[0].Role, got.Messages[1].Role, got.Messages[2].Role, got.Messages[3].Role}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "Give me an example.", got.Messages[3].Content)
}

func TestClient_Generate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, KindStatus},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, KindStatus},
		{"no choices", http.StatusOK, `{"choices":[]}`, KindEmpty},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewClient(testConfig(srv.URL)).Generate(context.Background(), Request{Prompt: "x"})
			require.False(t, res.OK())
			assert.Equal(t, tt.wantKind, res.Err.Kind)
			if tt.wantKind == KindStatus {
				assert.Equal(t, tt.status, res.Err.StatusCode)
			}
		})
	}
}

func TestClient_Generate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"second time lucky"}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	res := NewClient(cfg).Generate(context.Background(), Request{Prompt: "x"})

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "second time lucky", res.Value)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Generate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewClient(testConfig(url)).Generate(context.Background(), Request{Prompt: "x"})
	require.False(t, res.OK())
	assert.Equal(t, KindUnavailable, res.Err.Kind)
}

func TestClient_Generate_CanceledContext(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	c := NewClient(cfg)

	// Drain the only token so the next call has to wait.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Generate(ctx, Request{Prompt: "x"})
	require.False(t, res.OK())
	assert.Equal(t, KindUnavailable, res.Err.Kind)
}

func TestNew_DisabledWithoutKey(t *testing.T) {
	gen := New(config.LLMConfig{})
	_, ok := gen.(Disabled)
	require.True(t, ok)

	res := gen.Generate(context.Background(), Request{Prompt: "x"})
	require.False(t, res.OK())
	assert.Equal(t, KindUnavailable, res.Err.Kind)
}
