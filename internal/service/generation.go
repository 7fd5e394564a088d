package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// DefaultStandard is the writing standard rubrics are generated against.
const DefaultStandard = "Common Core State Standards for English Language Arts & Literacy: CCSS.ELA-LITERACY.W.4.9"

// TokenBudgets holds the per-operation maximum output length.
type TokenBudgets struct {
	Rubric   int
	Question int
	Validity int
	Scoring  int
	QA       int
	Essay    int
}

// GenerationSettings are the fixed inputs every orchestration step consumes.
type GenerationSettings struct {
	Standard    string
	MaxAttempts int
	Temperature float32
	Budgets     TokenBudgets
}

// DefaultGenerationSettings returns the stock standard, attempt cap and budgets.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		Standard:    DefaultStandard,
		MaxAttempts: DefaultMaxAttempts,
		Temperature: 0,
		Budgets: TokenBudgets{
			Rubric:   5000,
			Question: 5000,
			Validity: 2000,
			Scoring:  5000,
			QA:       5000,
			Essay:    2000,
		},
	}
}

// SettingsFromConfig maps the grading section of the runtime configuration.
func SettingsFromConfig(grading config.GradingConfig) GenerationSettings {
	return GenerationSettings{
		Standard:    grading.Standard,
		MaxAttempts: grading.MaxAttempts,
		Temperature: grading.Temperature,
		Budgets: TokenBudgets{
			Rubric:   grading.RubricTokens,
			Question: grading.QuestionTokens,
			Validity: grading.ValidityTokens,
			Scoring:  grading.ScoringTokens,
			QA:       grading.QATokens,
			Essay:    grading.EssayTokens,
		},
	}
}

func (s GenerationSettings) withDefaults() GenerationSettings {
	defaults := DefaultGenerationSettings()
	if s.Standard == "" {
		s.Standard = defaults.Standard
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaults.MaxAttempts
	}
	if s.Temperature < 0 {
		s.Temperature = 0
	}
	if s.Budgets.Rubric <= 0 {
		s.Budgets.Rubric = defaults.Budgets.Rubric
	}
	if s.Budgets.Question <= 0 {
		s.Budgets.Question = defaults.Budgets.Question
	}
	if s.Budgets.Validity <= 0 {
		s.Budgets.Validity = defaults.Budgets.Validity
	}
	if s.Budgets.Scoring <= 0 {
		s.Budgets.Scoring = defaults.Budgets.Scoring
	}
	if s.Budgets.QA <= 0 {
		s.Budgets.QA = defaults.Budgets.QA
	}
	if s.Budgets.Essay <= 0 {
		s.Budgets.Essay = defaults.Budgets.Essay
	}
	return s
}

// step bundles what every builder needs to issue gateway calls through the harness.
type step struct {
	generator ai.Generator
	settings  GenerationSettings
	logger    zerolog.Logger
}

func newStep(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger, component string) step {
	return step{
		generator: generator,
		settings:  settings.withDefaults(),
		logger:    logger.With().Str("component", component).Logger(),
	}
}

func (s step) policy() RetryPolicy {
	return RetryPolicy{MaxAttempts: s.settings.MaxAttempts, Logger: s.logger}
}

func (s step) generate(ctx context.Context, template ai.TemplateName, maxTokens int, jsonOutput bool, params map[string]any) (string, error) {
	return s.generator.Generate(ctx, ai.GenerationRequest{
		Template:    template,
		Params:      params,
		MaxTokens:   maxTokens,
		Temperature: s.settings.Temperature,
		JSON:        jsonOutput,
	})
}
