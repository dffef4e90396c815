package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageTestConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.ImageEndpoint = url
	cfg.TimeoutMs = 2000
	return cfg
}

func TestImageClient_Generate_ReturnsMediaReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"url": "https://cdn.example.com/generated/42.png"}]}`))
	}))
	defer srv.Close()

	client := NewImageClient(newImageTestConfig(srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), ImageRequest{
		Prompt: "Minimalist workspace in brand palette",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/generated/42.png", resp.MediaURL)
	assert.Equal(t, 1, resp.BilledUnits)
}

func TestImageClient_Generate_EmptyDataIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := NewImageClient(newImageTestConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), ImageRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, KindProviderError, ClassifyError(err))
}

func TestImageClient_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewImageClient(newImageTestConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), ImageRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestConfig_ImageRate_TracksRenderingSpeed(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ImageRenderingSpeed = "FAST"
	assert.True(t, cfg.ImageRate().Equal(decimal.RequireFromString("0.08")))

	cfg.ImageRenderingSpeed = "QUALITY"
	assert.True(t, cfg.ImageRate().Equal(decimal.RequireFromString("0.32")))

	// Unknown tiers bill at the conservative (highest) rate.
	cfg.ImageRenderingSpeed = "WARP"
	assert.True(t, cfg.ImageRate().Equal(decimal.RequireFromString("0.32")))
}
