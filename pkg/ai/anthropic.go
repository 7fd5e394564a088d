package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAnthropicModel is used when no model is configured for the Anthropic provider.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicConfig defines configuration options for the Anthropic generator.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  zerolog.Logger
}

// AnthropicGenerator implements Generator against the Anthropic Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	cfg    AnthropicConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewAnthropicGenerator builds a new generator using the provided configuration.
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	// Attempts are counted by the caller's retry policy.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-essay-api/pkg/ai/anthropic"),
		logger: logger.With().Str("component", "anthropic_generator").Logger(),
	}, nil
}

// Generate renders the request template, sends it as one user turn with the template's
// system prompt and returns the concatenated text blocks of the reply.
func (a *AnthropicGenerator) Generate(parent context.Context, req GenerationRequest) (string, error) {
	ctx, span := a.tracer.Start(parent, "anthropic.generate", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.String("template", string(req.Template)),
		attribute.Int("max_tokens", req.MaxTokens),
	))
	defer span.End()

	messages, err := Render(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, params)
	aiDuration.WithLabelValues(a.cfg.Model, string(req.Template)).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", a.fail(span, req, fmt.Errorf("anthropic generate %s: %w", req.Template, err))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return "", a.fail(span, req, ErrEmptyOutput)
	}

	totalTokens := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	span.SetAttributes(attribute.Int("usage.total_tokens", totalTokens))
	a.logger.Debug().
		Str("template", string(req.Template)).
		Int("total_tokens", totalTokens).
		Str("stop_reason", string(resp.StopReason)).
		Msg("generation completed")

	return content, nil
}

func (a *AnthropicGenerator) fail(span trace.Span, req GenerationRequest, err error) error {
	aiFailures.WithLabelValues(a.cfg.Model, string(req.Template)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
