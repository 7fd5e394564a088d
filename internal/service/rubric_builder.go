package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// RubricBuilder generates and structurally validates grade-specific rubrics.
type RubricBuilder struct {
	step
}

// NewRubricBuilder constructs a rubric builder.
func NewRubricBuilder(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) *RubricBuilder {
	return &RubricBuilder{step: newStep(generator, settings, logger, "rubric_builder")}
}

// Build generates a rubric for grade. The outcome is never partially valid.
func (b *RubricBuilder) Build(ctx context.Context, grade models.GradeLevel) Outcome[models.Rubric] {
	params := map[string]any{
		"grade":    string(grade),
		"standard": b.settings.Standard,
	}

	produce := func(ctx context.Context) (models.Rubric, error) {
		raw, err := b.generate(ctx, ai.TemplateRubric, b.settings.Budgets.Rubric, false, params)
		if err != nil {
			return models.Rubric{}, err
		}
		var sections []models.Section
		if err := decodeStructured(raw, rubricSchema, &sections); err != nil {
			return models.Rubric{}, err
		}
		return models.Rubric{Sections: sections}, nil
	}

	return Retry(ctx, b.policy(), "rubric", produce, models.Rubric.Validate)
}
