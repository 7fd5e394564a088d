package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// ValidityChecker decides whether an essay responds to its prompt.
type ValidityChecker struct {
	step
}

// NewValidityChecker constructs a validity checker.
func NewValidityChecker(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) *ValidityChecker {
	return &ValidityChecker{step: newStep(generator, settings, logger, "validity_checker")}
}

// Check runs one validity judgement per attempt. Results are never cached.
func (c *ValidityChecker) Check(ctx context.Context, grade models.GradeLevel, topic, prompt, essay string) Outcome[models.ValidityResult] {
	params := map[string]any{
		"grade":    string(grade),
		"topic":    topic,
		"essay":    essay,
		"question": prompt,
	}

	produce := func(ctx context.Context) (models.ValidityResult, error) {
		raw, err := c.generate(ctx, ai.TemplateValidity, c.settings.Budgets.Validity, true, params)
		if err != nil {
			return models.ValidityResult{}, err
		}
		var result models.ValidityResult
		if err := decodeStructured(raw, validitySchema, &result); err != nil {
			return models.ValidityResult{}, err
		}
		result.Feedback = strings.TrimSpace(result.Feedback)
		return result, nil
	}

	return Retry(ctx, c.policy(), "validity", produce, nil)
}
