package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// EssayGenerator writes synthetic student essays at a requested quality level.
type EssayGenerator struct {
	step
}

// NewEssayGenerator constructs a synthetic essay generator.
func NewEssayGenerator(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) *EssayGenerator {
	return &EssayGenerator{step: newStep(generator, settings, logger, "essay_generator")}
}

// Generate writes an essay answering prompt as a student of grade at quality would,
// shaped by the rubric it will be graded with.
func (g *EssayGenerator) Generate(ctx context.Context, grade models.GradeLevel, prompt string, rubric models.Rubric, quality models.QualityLevel) Outcome[string] {
	params := map[string]any{
		"grade":    string(grade),
		"quality":  strings.ToLower(string(quality)),
		"question": prompt,
		"rubric":   rubric.JSON(),
	}

	produce := func(ctx context.Context) (string, error) {
		raw, err := g.generate(ctx, ai.TemplateTestEssay, g.settings.Budgets.Essay, false, params)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(raw), nil
	}

	validate := func(essay string) error {
		if essay == "" {
			return errors.New("generated essay is empty")
		}
		return nil
	}

	return Retry(ctx, g.policy(), "test_essay", produce, validate)
}
