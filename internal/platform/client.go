// Package platform talks to the external publishing platform. Every post
// request carries a caller-derived idempotency key so an ambiguous outcome
// can be reconciled by asking the platform whether the key already landed.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Publisher is the outbound surface the publish pipeline depends on.
type Publisher interface {
	// Post publishes body and media refs under the given idempotency key and
	// returns the external post id.
	Post(ctx context.Context, req *PostRequest) (string, error)

	// LookupByIdempotencyKey reports the external post id for a key that may
	// have landed during an ambiguous outcome. Returns ErrPostNotFound when
	// the platform has no such post.
	LookupByIdempotencyKey(ctx context.Context, key string) (string, error)
}

// PostRequest is one publish attempt.
type PostRequest struct {
	Body           string   `json:"body"`
	MediaRefs      []string `json:"media_refs,omitempty"`
	IdempotencyKey string   `json:"-"`
}

type postResponse struct {
	ID string `json:"id"`
}

// Client is an HTTP Publisher against a platform exposing POST /posts and
// GET /posts/by-key/{key}.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(baseURL, apiToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromEnv builds a Client from PRESSROOM_PLATFORM_ENDPOINT and
// PRESSROOM_PLATFORM_TOKEN.
func NewClientFromEnv(opts ...Option) *Client {
	return NewClient(
		os.Getenv("PRESSROOM_PLATFORM_ENDPOINT"),
		os.Getenv("PRESSROOM_PLATFORM_TOKEN"),
		opts...)
}

func (c *Client) Post(ctx context.Context, req *PostRequest) (string, error) {
	if c.baseURL == "" {
		return "", NewPublishError(ErrKindRejected, fmt.Errorf("publishing platform endpoint is not configured"))
	}
	if req.IdempotencyKey == "" {
		return "", NewPublishError(ErrKindRejected, fmt.Errorf("idempotency key is required"))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", NewPublishError(ErrKindRejected, fmt.Errorf("failed to encode post: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", bytes.NewReader(payload))
	if err != nil {
		return "", NewPublishError(ErrKindRejected, fmt.Errorf("failed to build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The request may have reached the platform before the failure, so
		// timeouts and dropped connections are ambiguous, not transient.
		if isDefinitelyNotSent(err) {
			return "", NewPublishError(ErrKindTransient, err)
		}
		return "", NewPublishError(ErrKindAmbiguous, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", NewPublishError(ErrKindAmbiguous, fmt.Errorf("response truncated: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var decoded postResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return "", NewPublishError(ErrKindAmbiguous, fmt.Errorf("unreadable success response: %w", err))
		}
		if decoded.ID == "" {
			return "", NewPublishError(ErrKindAmbiguous, fmt.Errorf("platform accepted post but returned no id"))
		}
		return decoded.ID, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", NewPublishError(ErrKindTransient, fmt.Errorf("platform returned status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	default:
		return "", NewPublishError(ErrKindRejected, fmt.Errorf("platform rejected post with status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}
}

func (c *Client) LookupByIdempotencyKey(ctx context.Context, key string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("publishing platform endpoint is not configured")
	}

	u := c.baseURL + "/posts/by-key/" + url.PathEscape(key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build lookup request: %w", err)
	}
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read lookup response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrPostNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var decoded postResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return "", fmt.Errorf("failed to decode lookup response: %w", err)
		}
		if decoded.ID == "" {
			return "", fmt.Errorf("lookup succeeded but returned no post id")
		}
		return decoded.ID, nil
	default:
		return "", fmt.Errorf("lookup returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
}

// isDefinitelyNotSent reports whether the transport error guarantees the
// request never reached the platform. Only dial failures qualify; anything
// after connection setup may have delivered the request.
func isDefinitelyNotSent(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return false
	}
	if urlErr.Timeout() {
		return false
	}
	var opErr *net.OpError
	if errors.As(urlErr.Err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
