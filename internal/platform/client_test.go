package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post_Success(t *testing.T) {
	var gotKey string
	var gotBody PostRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		gotKey = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"id": "post-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1")
	postID, err := client.Post(context.Background(), &PostRequest{
		Body:           "hello world",
		MediaRefs:      []string{"https://cdn.example.com/a.png"},
		IdempotencyKey: "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "post-42", postID)
	assert.Equal(t, "abc123", gotKey)
	assert.Equal(t, "hello world", gotBody.Body)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, gotBody.MediaRefs)
}

func TestClient_Post_RequiresIdempotencyKey(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	_, err := client.Post(context.Background(), &PostRequest{Body: "x"})
	require.Error(t, err)
	assert.Equal(t, ErrKindRejected, ClassifyPublishError(err))
}

func TestClient_Post_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindTransient, ClassifyPublishError(err))
}

func TestClient_Post_RateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindTransient, ClassifyPublishError(err))
}

func TestClient_Post_ValidationErrorIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "body too long", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindRejected, ClassifyPublishError(err))
	assert.Contains(t, err.Error(), "body too long")
}

func TestClient_Post_TimeoutIsAmbiguous(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "", WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	start := time.Now()
	_, err := client.Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, ErrKindAmbiguous, ClassifyPublishError(err))
}

func TestClient_Post_ConnectionRefusedIsTransient(t *testing.T) {
	// Reserve a port and close it so the dial is guaranteed to fail.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewClient(addr, "").Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindTransient, ClassifyPublishError(err))
}

func TestClient_Post_MissingIDIsAmbiguous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Post(context.Background(), &PostRequest{Body: "x", IdempotencyKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindAmbiguous, ClassifyPublishError(err))
}

func TestClient_LookupByIdempotencyKey_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/by-key/abc123", r.URL.Path)
		w.Write([]byte(`{"id": "post-42"}`))
	}))
	defer server.Close()

	postID, err := NewClient(server.URL, "").LookupByIdempotencyKey(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "post-42", postID)
}

func TestClient_LookupByIdempotencyKey_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").LookupByIdempotencyKey(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestClient_LookupByIdempotencyKey_EscapesKey(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"id": "post-1"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").LookupByIdempotencyKey(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/posts/by-key/a%2Fb%20c", gotPath)
}
