package headers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ProviderConfig names a provider and carries the credentials for each
// supported one.
type ProviderConfig struct {
	Name            string // anthropic, gemini, none
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
}

// NewProvider builds the named provider. "none" and "" return a nil
// Provider and no error.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case "", "none":
		return nil, nil
	case "anthropic", "claude":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("missing ANTHROPIC_API_KEY")
		}
		model := cfg.AnthropicModel
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		return NewClaudeClient(cfg.AnthropicAPIKey, model), nil
	case "gemini":
		g, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (want anthropic, gemini or none)", cfg.Name)
	}
}
