package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/provider"
	"github.com/bingitech/pressroom/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatBody(text string, tokens int) string {
	return fmt.Sprintf(`{
		"model": "test-model",
		"choices": [{"message": {"role": "assistant", "content": %q}}],
		"usage": {"total_tokens": %d}
	}`, text, tokens)
}

func newTextAgentForServer(srv *httptest.Server) *TextAgent {
	cfg := provider.DefaultConfig()
	cfg.TextEndpoint = srv.URL
	cfg.TimeoutMs = 2000
	client := provider.NewTextClient(cfg, provider.NoopObserver{})
	return NewTextAgent(client, cfg, "micro-blog", WithTextBackoffBase(time.Millisecond))
}

func TestTextAgent_Generate_ProducesDeterministicDraftID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody("Code review is the real velocity hack.", 120)))
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v7")

	first, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v7")
	require.NoError(t, err)
	second, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v7")
	require.NoError(t, err)

	assert.Equal(t, first.Draft.ID, second.Draft.ID,
		"same config version and seed must derive the same draft id")
	assert.Equal(t, domain.DraftPendingReview, first.Draft.Status)
	assert.Equal(t, "micro-blog", first.Draft.Platform)
}

func TestTextAgent_Generate_BillsExactTokenCost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody("Short post.", 1500)))
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1")

	res, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v1")
	require.NoError(t, err)

	// 1500 tokens at 0.03/1K = 0.045, exactly.
	assert.True(t, res.Billing.Amount.Equal(decimal.RequireFromString("0.045")),
		"got %s", res.Billing.Amount)
	assert.Equal(t, "USD", res.Billing.Currency)
	assert.Equal(t, 1500, res.Billing.UnitCount)
	assert.Equal(t, "openai", res.Billing.Service)
}

func TestTextAgent_Generate_OverLimitFailsInsteadOfTruncating(t *testing.T) {
	long := strings.Repeat("x", 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody(long, 80)))
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1") // micro-blog is 280 chars

	_, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v1")
	require.Error(t, err)
	assert.Equal(t, provider.KindInvalidConfig, provider.ClassifyError(err))
	assert.Contains(t, err.Error(), "refusing to truncate")
}

func TestTextAgent_Generate_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatBody("Third time lucky.", 40)))
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1")

	res, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v1")
	require.NoError(t, err)
	assert.Equal(t, "Third time lucky.", res.Draft.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTextAgent_Generate_RateLimitExhaustsAfterBoundedAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1")

	_, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v1")
	require.Error(t, err)
	assert.Equal(t, provider.KindRateLimited, provider.ClassifyError(err))
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestTextAgent_Generate_InvalidConfigNeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad model"}}`))
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1")

	_, err := agent.Generate(context.Background(), cfg, "technical_deep_dives", "v1")
	require.Error(t, err)
	assert.Equal(t, provider.KindInvalidConfig, provider.ClassifyError(err))
	assert.Equal(t, int32(1), calls.Load(), "invalid config must not be retried")
}

func TestTextAgent_Generate_UnknownPillarIsInvalidConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called for an unknown pillar")
	}))
	defer srv.Close()

	agent := newTextAgentForServer(srv)
	cfg := testutil.NewTestBrandConfig("v1")

	_, err := agent.Generate(context.Background(), cfg, "nonexistent_pillar", "v1")
	require.Error(t, err)
	assert.Equal(t, provider.KindInvalidConfig, provider.ClassifyError(err))
}
