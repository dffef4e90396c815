package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ImageRequest holds the parameters for an image generation call.
type ImageRequest struct {
	Prompt     string
	StyleType  string
	Resolution string
}

// ImageResponse holds the result of an image generation call. The media
// lives with the provider; drafts only carry the reference URL.
type ImageResponse struct {
	MediaURL    string
	BilledUnits int
	LatencyMs   int64
}

// ImageGenerator produces brand visuals through an external provider.
type ImageGenerator interface {
	Generate(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// imageClient implements ImageGenerator against an Ideogram-style HTTP API.
type imageClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewImageClient creates an ImageGenerator for the configured endpoint.
func NewImageClient(cfg Config, observer Observer) ImageGenerator {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &imageClient{
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

type imageAPIRequest struct {
	Prompt         string `json:"prompt"`
	RenderingSpeed string `json:"rendering_speed"`
	StyleType      string `json:"style_type,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
}

type imageAPIResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (c *imageClient) Generate(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	operation := "image_generation_" + lowerSpeed(c.cfg.ImageRenderingSpeed)

	resp, err := c.doRequest(ctx, imageAPIRequest{
		Prompt:         req.Prompt,
		RenderingSpeed: c.cfg.ImageRenderingSpeed,
		StyleType:      req.StyleType,
		Resolution:     req.Resolution,
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() != nil {
			err = NewGenerationError(KindProviderError, ErrTimeout)
		}
		c.observer.OnCallComplete(CallEvent{
			Service:   "ideogram",
			Operation: operation,
			LatencyMs: latency,
			Success:   false,
			ErrorKind: ClassifyError(err),
		})
		return nil, err
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, NewGenerationError(KindProviderError,
			fmt.Errorf("provider returned no media reference"))
	}

	c.observer.OnCallComplete(CallEvent{
		Service:   "ideogram",
		Operation: operation,
		LatencyMs: latency,
		Units:     len(resp.Data),
		Success:   true,
	})

	return &ImageResponse{
		MediaURL:    resp.Data[0].URL,
		BilledUnits: len(resp.Data),
		LatencyMs:   latency,
	}, nil
}

func (c *imageClient) doRequest(ctx context.Context, body imageAPIRequest) (*imageAPIResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, NewGenerationError(KindInvalidConfig, fmt.Errorf("marshaling request: %w", err))
	}

	url := c.cfg.ImageEndpoint + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, NewGenerationError(KindInvalidConfig, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.ImageAPIKey != "" {
		httpReq.Header.Set("Api-Key", c.cfg.ImageAPIKey)
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

	var resp imageAPIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewGenerationError(KindProviderError, fmt.Errorf("decoding response: %w", err))
	}
	return &resp, nil
}

func lowerSpeed(speed string) string {
	return strings.ToLower(speed)
}
