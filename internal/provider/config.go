package provider

import (
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds endpoints, credentials and billing rates for the external
// generation providers. Everything is overridable from the environment; the
// defaults match the managed-API deployment.
type Config struct {
	TextEndpoint  string
	TextModel     string
	TextAPIKey    string
	ImageEndpoint string
	ImageAPIKey   string
	// ImageRenderingSpeed is the provider quality tier (FAST, BALANCED,
	// QUALITY); tiers bill at different per-image rates.
	ImageRenderingSpeed string
	TimeoutMs           int
	Pricing             Pricing
}

// Pricing maps billed units to exact decimal amounts. Rates mirror the
// provider price sheets; the currency is uniform per deployment.
type Pricing struct {
	Currency        string
	TextPer1KTokens decimal.Decimal
	ImagePerUnit    map[string]decimal.Decimal // keyed by rendering speed
}

// DefaultConfig returns a Config with managed-API defaults.
func DefaultConfig() Config {
	return Config{
		TextEndpoint:        "https://api.openai.com/v1",
		TextModel:           "gpt-4",
		ImageEndpoint:       "https://api.ideogram.ai/v1",
		ImageRenderingSpeed: "QUALITY",
		TimeoutMs:           30000,
		Pricing: Pricing{
			Currency:        "USD",
			TextPer1KTokens: decimal.RequireFromString("0.03"),
			ImagePerUnit: map[string]decimal.Decimal{
				"FAST":     decimal.RequireFromString("0.08"),
				"BALANCED": decimal.RequireFromString("0.16"),
				"QUALITY":  decimal.RequireFromString("0.32"),
			},
		},
	}
}

// LoadConfig reads provider configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PRESSROOM_TEXT_ENDPOINT"); v != "" {
		cfg.TextEndpoint = v
	}
	if v := os.Getenv("PRESSROOM_TEXT_MODEL"); v != "" {
		cfg.TextModel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.TextAPIKey = v
	}
	if v := os.Getenv("PRESSROOM_IMAGE_ENDPOINT"); v != "" {
		cfg.ImageEndpoint = v
	}
	if v := os.Getenv("IDEOGRAM_API_TOKEN"); v != "" {
		cfg.ImageAPIKey = v
	}
	if v := os.Getenv("PRESSROOM_IMAGE_SPEED"); v != "" {
		cfg.ImageRenderingSpeed = v
	}
	if v := os.Getenv("PRESSROOM_PROVIDER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}

// ImageRate returns the per-image amount for the configured rendering speed.
func (c Config) ImageRate() decimal.Decimal {
	if rate, ok := c.Pricing.ImagePerUnit[c.ImageRenderingSpeed]; ok {
		return rate
	}
	return c.Pricing.ImagePerUnit["QUALITY"]
}
