package openaillm

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

	"github.com/vipul43/blogforge/internal/generator"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/upstream"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Settings{}, upstream.DefaultPolicy())
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.InDelta(t, 0.7, req["temperature"], 0.001)
		assert.InDelta(t, 0.95, req["top_p"], 0.001)
		assert.EqualValues(t, 8192, req["max_completion_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<h1>Hi</h1>"}}]}`))
	}))
	defer server.Close()

	llm, err := New(Settings{APIKey: "sk-test", BaseURL: server.URL, HTTPClient: server.Client()}, upstream.DefaultPolicy())
	require.NoError(t, err)

	got, err := llm.Complete(context.Background(), generator.BuildBlogPrompt(models.ProviderLinkedIn, "post"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", got)
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer server.Close()

	llm, err := New(Settings{APIKey: "sk-test", BaseURL: server.URL, HTTPClient: server.Client()}, upstream.DefaultPolicy())
	require.NoError(t, err)

	_, err = llm.Complete(context.Background(), generator.BuildBlogPrompt(models.ProviderLinkedIn, "post"))
	assert.ErrorContains(t, err, "empty choices")
}

func TestComplete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded","param":null,"code":null}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<h1>Back</h1>"}}]}`))
	}))
	defer server.Close()

	policy := upstream.Policy{Timeout: 5 * time.Second, MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	llm, err := New(Settings{APIKey: "sk-test", BaseURL: server.URL, HTTPClient: server.Client()}, policy)
	require.NoError(t, err)

	got, err := llm.Complete(context.Background(), generator.BuildBlogPrompt(models.ProviderLinkedIn, "post"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Back</h1>", got)
	assert.Equal(t, int32(2), calls.Load())
}
