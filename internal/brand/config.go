// Package brand loads and validates the versioned brand configuration that
// drives a pipeline run. The config is an external, read-only JSON document;
// each run captures one immutable snapshot so concurrent edits can never
// produce a mixed-version run.
package brand

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Pillar is a named content theme with a scheduling weight. Weights are
// informative; they are not required to sum to 100.
type Pillar struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// Platform describes one publishing target and its constraints.
type Platform struct {
	Name         string `json:"name" validate:"required"`
	MaxChars     int    `json:"max_chars" validate:"gt=0"`
	PostsPerWeek int    `json:"posts_per_week" validate:"gte=0"`
}

// Config is a versioned immutable snapshot of the brand's content strategy.
type Config struct {
	BrandID   string     `json:"brand_id" validate:"required"`
	Version   string     `json:"version" validate:"required"`
	Voice     string     `json:"voice" validate:"required"`
	Tone      string     `json:"tone"`
	Palette   []string   `json:"visual_palette"`
	Pillars   []Pillar   `json:"content_pillars" validate:"required,min=1,dive"`
	Platforms []Platform `json:"platforms" validate:"required,min=1,dive"`
}

// ConfigError is a fatal configuration problem. A run aborts before any
// agent executes when the snapshot fails validation.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid brand config: %v", e.Err)
	}
	return fmt.Sprintf("invalid brand config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var validate = validator.New()

// Load reads and validates a brand config snapshot from a JSON file. Any
// schema violation is fatal for the run, not a partial run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := err.(*ConfigError); ok {
			ce.Path = path
			return nil, ce
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes and validates a brand config snapshot from raw JSON.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parsing JSON: %w", err)}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return &cfg, nil
}

// FindPlatform returns the platform entry with the given name.
func (c *Config) FindPlatform(name string) (Platform, error) {
	for _, p := range c.Platforms {
		if p.Name == name {
			return p, nil
		}
	}
	return Platform{}, &ConfigError{Err: fmt.Errorf("platform %q not present in config version %s", name, c.Version)}
}

// FindPillar returns the pillar entry with the given name.
func (c *Config) FindPillar(name string) (Pillar, error) {
	for _, p := range c.Pillars {
		if p.Name == name {
			return p, nil
		}
	}
	return Pillar{}, &ConfigError{Err: fmt.Errorf("pillar %q not present in config version %s", name, c.Version)}
}

// PillarNames lists all pillar names in declaration order.
func (c *Config) PillarNames() []string {
	names := make([]string, 0, len(c.Pillars))
	for _, p := range c.Pillars {
		names = append(names, p.Name)
	}
	return names
}
