// Package notify posts review requests and cost summaries to a
// Discord-compatible webhook. The webhook is the review surface: approval
// decisions come back out-of-band through the CLI, keyed by the message id
// returned here.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
)

var ErrWebhookUnconfigured = errors.New("notification webhook is not configured")

const (
	colorReview = 0x1DA1F2
	colorCostOK = 0x00FF00
	colorCost   = 0x3498DB

	defaultHTTPTimeout = 15 * time.Second
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

type webhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// Client posts messages to a single configured webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(webhookURL string, opts ...Option) *Client {
	c := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitDraft posts a draft for human review and returns the webhook
// message id. The id is what later decisions reference, so a send that
// yields no id is treated as a failure.
func (c *Client) SubmitDraft(ctx context.Context, cfg *brand.Config, draft *domain.Draft) (string, error) {
	if c.webhookURL == "" {
		return "", ErrWebhookUnconfigured
	}

	msg := buildDraftMessage(cfg, draft, c.now())
	resp, err := c.post(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to submit draft %s for review: %w", draft.ID, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("review webhook accepted draft %s but returned no message id", draft.ID)
	}
	return resp.ID, nil
}

// SendCostReport posts a rendered cost summary. Unlike SubmitDraft the
// message id is not needed afterwards, so it is discarded.
func (c *Client) SendCostReport(ctx context.Context, title string, report, trailing *domain.CostReport) error {
	if c.webhookURL == "" {
		return ErrWebhookUnconfigured
	}

	body := RenderCostMessage(report, trailing)
	color := colorCost
	if report.EntryCount == 0 {
		color = colorCostOK
	}
	msg := &webhookMessage{
		Embeds: []embed{{
			Title:       title,
			Description: body,
			Color:       color,
			Footer:      &embedFooter{Text: "BingiTech Content Platform"},
			Timestamp:   c.now().Format(time.RFC3339),
		}},
	}
	if _, err := c.post(ctx, msg); err != nil {
		return fmt.Errorf("failed to send cost report: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, msg *webhookMessage) (*webhookResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook message: %w", err)
	}

	// wait=true makes the webhook return the created message instead of 204.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL+"?wait=true", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded webhookResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode webhook response: %w", err)
		}
	}
	return &decoded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
