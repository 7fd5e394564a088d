package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMA_OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.AIProvider)
	require.Equal(t, "gpt-4o", cfg.AIModel)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, 5, cfg.Grading.MaxAttempts)
	require.Equal(t, float32(0), cfg.Grading.Temperature)
	require.Equal(t, 5000, cfg.Grading.RubricTokens)
	require.Equal(t, 2000, cfg.Grading.ValidityTokens)
	require.Equal(t, 2000, cfg.Grading.EssayTokens)
	require.Contains(t, cfg.Grading.Standard, "CCSS.ELA-LITERACY.W.4.9")
	require.Equal(t, "gema.essay.scored", cfg.NATSSubject)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMA_AI_PROVIDER", "Anthropic")
	t.Setenv("GEMA_ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("GEMA_APP_PORT", ":9090")
	t.Setenv("GEMA_SESSION_TTL", "30m")
	t.Setenv("GEMA_GRADING_MAX_ATTEMPTS", "3")
	t.Setenv("GEMA_TOKENS_SCORING", "1200")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderAnthropic, cfg.AIProvider)
	require.Equal(t, "claude-sonnet-4-5", cfg.AIModel)
	require.Equal(t, "ak-test", cfg.ProviderConfig(zerolog.Nop()).AnthropicAPIKey)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 3, cfg.Grading.MaxAttempts)
	require.Equal(t, 1200, cfg.Grading.ScoringTokens)
}

func TestLoadRequiresProviderKey(t *testing.T) {
	t.Setenv("GEMA_OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("GEMA_AI_PROVIDER", "mystery")

	_, err := Load()
	require.ErrorContains(t, err, "unsupported ai provider")
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("GEMA_OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMA_SESSION_TTL", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "session.ttl")
}

func TestLoadCapsAnthropicTemperature(t *testing.T) {
	t.Setenv("GEMA_AI_PROVIDER", "anthropic")
	t.Setenv("GEMA_ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("GEMA_GRADING_TEMPERATURE", "1.5")

	_, err := Load()
	require.ErrorContains(t, err, "grading temperature")
}
