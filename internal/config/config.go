package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// Supported ai.provider values.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds runtime configuration values for the assessment service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	RedisURL         string
	SessionTTL       time.Duration
	AIProvider       string
	AIModel          string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	Grading          GradingConfig
	NATSURL          string
	NATSSubject      string
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

// GradingConfig carries the generation settings shared by every orchestration step.
type GradingConfig struct {
	Standard       string
	MaxAttempts    int
	Temperature    float32
	RubricTokens   int
	QuestionTokens int
	ValidityTokens int
	ScoringTokens  int
	QATokens       int
	EssayTokens    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ProviderConfig returns the generator settings for the configured AI provider.
func (c Config) ProviderConfig(logger zerolog.Logger) ai.ProviderConfig {
	return ai.ProviderConfig{
		Provider:         c.AIProvider,
		Model:            c.AIModel,
		OpenAIAPIKey:     c.OpenAIAPIKey,
		OpenAIBaseURL:    c.OpenAIBaseURL,
		AnthropicAPIKey:  c.AnthropicAPIKey,
		AnthropicBaseURL: c.AnthropicBaseURL,
		Logger:           logger,
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Essay API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("grading.standard", "Common Core State Standards for English Language Arts & Literacy: CCSS.ELA-LITERACY.W.4.9")
	v.SetDefault("grading.max_attempts", 5)
	v.SetDefault("grading.temperature", 0)
	v.SetDefault("tokens.rubric", 5000)
	v.SetDefault("tokens.question", 5000)
	v.SetDefault("tokens.validity", 2000)
	v.SetDefault("tokens.scoring", 5000)
	v.SetDefault("tokens.qa", 5000)
	v.SetDefault("tokens.essay", 2000)
	v.SetDefault("nats.subject", "gema.essay.scored")
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")

	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	window, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		RedisURL:         v.GetString("redis.url"),
		SessionTTL:       sessionTTL,
		AIProvider:       strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		AIModel:          v.GetString("ai.model"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIBaseURL:    v.GetString("openai_base_url"),
		AnthropicAPIKey:  v.GetString("anthropic_api_key"),
		AnthropicBaseURL: v.GetString("anthropic_base_url"),
		Grading: GradingConfig{
			Standard:       v.GetString("grading.standard"),
			MaxAttempts:    v.GetInt("grading.max_attempts"),
			Temperature:    float32(v.GetFloat64("grading.temperature")),
			RubricTokens:   v.GetInt("tokens.rubric"),
			QuestionTokens: v.GetInt("tokens.question"),
			ValidityTokens: v.GetInt("tokens.validity"),
			ScoringTokens:  v.GetInt("tokens.scoring"),
			QATokens:       v.GetInt("tokens.qa"),
			EssayTokens:    v.GetInt("tokens.essay"),
		},
		NATSURL:         v.GetString("nats.url"),
		NATSSubject:     v.GetString("nats.subject"),
		RateLimitMax:    v.GetInt("rate_limit.max"),
		RateLimitWindow: window,
	}

	maxTemperature := float32(2)
	switch cfg.AIProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("openai api key must be provided")
		}
		if cfg.AIModel == "" {
			cfg.AIModel = ai.DefaultOpenAIModel
		}
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return Config{}, fmt.Errorf("anthropic api key must be provided")
		}
		if cfg.AIModel == "" {
			cfg.AIModel = ai.DefaultAnthropicModel
		}
		maxTemperature = 1
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.Grading.MaxAttempts <= 0 {
		cfg.Grading.MaxAttempts = 5
	}
	if cfg.Grading.Temperature < 0 || cfg.Grading.Temperature > maxTemperature {
		return Config{}, fmt.Errorf("grading temperature must be between 0 and %g for %s", maxTemperature, cfg.AIProvider)
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
