package ai

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ProviderConfig selects and configures one generator backend.
type ProviderConfig struct {
	Provider         string
	Model            string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	Logger           zerolog.Logger
}

// NewGenerator builds the generator for cfg.Provider.
func NewGenerator(cfg ProviderConfig) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		generator, err := NewOpenAIGenerator(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		return generator, nil
	case "anthropic":
		generator, err := NewAnthropicGenerator(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.AnthropicBaseURL,
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		return generator, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
