package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// TextRequest holds the parameters for a text generation call.
type TextRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// TextResponse holds the result of a text generation call. BilledTokens is
// the provider-reported usage the cost ledger bills against.
type TextResponse struct {
	Text         string
	Model        string
	BilledTokens int
	LatencyMs    int64
}

// TextGenerator produces brand copy through an external LLM provider.
type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (*TextResponse, error)
}

// chatClient implements TextGenerator against an OpenAI-style chat
// completions API.
type chatClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewTextClient creates a TextGenerator for the configured endpoint.
func NewTextClient(cfg Config, observer Observer) TextGenerator {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &chatClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *chatClient) Generate(ctx context.Context, req TextRequest) (*TextResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	body := chatRequest{
		Model: c.cfg.TextModel,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: req.MaxTokens,
	}

	resp, err := c.doRequest(ctx, body)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() != nil {
			err = NewGenerationError(KindProviderError, ErrTimeout)
		}
		c.observer.OnCallComplete(CallEvent{
			Service:   "openai",
			Operation: "text_generation",
			LatencyMs: latency,
			Success:   false,
			ErrorKind: ClassifyError(err),
		})
		return nil, err
	}

	c.observer.OnCallComplete(CallEvent{
		Service:   "openai",
		Operation: "text_generation",
		LatencyMs: latency,
		Units:     resp.Usage.TotalTokens,
		Success:   true,
	})

	if len(resp.Choices) == 0 {
		return nil, NewGenerationError(KindProviderError,
			fmt.Errorf("provider returned no choices"))
	}
	return &TextResponse{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		BilledTokens: resp.Usage.TotalTokens,
		LatencyMs:    latency,
	}, nil
}

func (c *chatClient) doRequest(ctx context.Context, body chatRequest) (*chatResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, NewGenerationError(KindInvalidConfig, fmt.Errorf("marshaling request: %w", err))
	}

	url := c.cfg.TextEndpoint + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, NewGenerationError(KindInvalidConfig, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.TextAPIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.TextAPIKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, NewGenerationError(KindProviderError, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewGenerationError(KindProviderError, fmt.Errorf("reading response: %w", err))
	}

	if err := classifyStatus(httpResp.StatusCode, respBody); err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewGenerationError(KindProviderError, fmt.Errorf("decoding response: %w", err))
	}
	return &resp, nil
}

// classifyStatus maps an HTTP status to the generation error taxonomy.
// 429 is retryable; other 4xx mean the request itself is unacceptable; 5xx
// is the provider's problem.
func classifyStatus(status int, body []byte) error {
	if status == http.StatusOK {
		return nil
	}

	detail := string(body)
	var apiErr apiError
	if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
		detail = apiErr.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests:
		return NewGenerationError(KindRateLimited,
			fmt.Errorf("provider rate limited: %s", detail))
	case status >= 400 && status < 500:
		return NewGenerationError(KindInvalidConfig,
			fmt.Errorf("provider rejected request (status %d): %s", status, detail))
	default:
		return NewGenerationError(KindProviderError,
			fmt.Errorf("provider returned status %d: %s", status, detail))
	}
}
