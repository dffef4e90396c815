package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextTestConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.TextEndpoint = url
	cfg.TextModel = "test-model"
	cfg.TimeoutMs = 2000
	return cfg
}

func TestTextClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "test-model",
			"choices": [{"message": {"role": "assistant", "content": "Shipping beats perfection."}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer srv.Close()

	client := NewTextClient(newTextTestConfig(srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), TextRequest{
		SystemPrompt: "You are the brand voice.",
		UserPrompt:   "Write a post.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Shipping beats perfection.", resp.Text)
	assert.Equal(t, 42, resp.BilledTokens)
}

func TestTextClient_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	client := NewTextClient(newTextTestConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), TextRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, ClassifyError(err))
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestTextClient_Generate_InvalidConfigNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "unknown model", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewTextClient(newTextTestConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), TextRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, ClassifyError(err))
	assert.False(t, IsRetryable(err))
}

func TestTextClient_Generate_ServerErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTextClient(newTextTestConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), TextRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindProviderError, ClassifyError(err))
}

func TestTextClient_Generate_TimeoutDoesNotHang(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
			return
		}
	}))
	defer srv.Close()

	cfg := newTextTestConfig(srv.URL)
	cfg.TimeoutMs = 200
	client := NewTextClient(cfg, NoopObserver{})

	start := time.Now()
	_, err := client.Generate(context.Background(), TextRequest{UserPrompt: "hi"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, 2*time.Second, "a stuck provider must fail the call, not hang it")
}
