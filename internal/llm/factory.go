package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoAPIKey signals that no provider credentials are configured.
var ErrNoAPIKey = errors.New("llm API key is not configured")

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds LLM settings.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	CallDelay  time.Duration
	Timeout    time.Duration
	// Temperature is the categorizer's sampling temperature; nil uses the default.
	Temperature *float64
	MaxTokens   int
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if strings.EqualFold(provider, ProviderOpenAI) {
		return "gpt-4o-mini"
	}
	return "gemini-2.0-flash"
}

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return newGeminiClient(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
