package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// ScoreInput carries everything a scoring round is conditioned on.
type ScoreInput struct {
	Grade         models.GradeLevel
	Topic         string
	Prompt        string
	Rubric        models.Rubric
	Essay         string
	PreviousEssay string
}

// Scorer grades essays against a rubric and only accepts reports a QA reviewer approves.
type Scorer struct {
	step
}

// NewScorer constructs a scorer.
func NewScorer(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) *Scorer {
	return &Scorer{step: newStep(generator, settings, logger, "scorer")}
}

// Score issues a grading call followed by a QA call on every attempt. A rejected candidate
// is discarded and the next attempt grades from scratch.
func (s *Scorer) Score(ctx context.Context, input ScoreInput) Outcome[models.ScoreReport] {
	compare := models.QualifiesForComparison(input.PreviousEssay)
	previous := ""
	if compare {
		previous = input.PreviousEssay
	}

	gradingParams := map[string]any{
		"grade":          string(input.Grade),
		"topic":          input.Topic,
		"rubric":         input.Rubric.JSON(),
		"essay":          input.Essay,
		"question":       input.Prompt,
		"previous_essay": previous,
		"compare":        compare,
	}

	produce := func(ctx context.Context) (models.ScoreReport, error) {
		candidate, err := s.generate(ctx, ai.TemplateGrading, s.settings.Budgets.Scoring, true, gradingParams)
		if err != nil {
			return models.ScoreReport{}, err
		}

		verdict, err := s.review(ctx, input, candidate)
		if err != nil {
			return models.ScoreReport{}, err
		}
		if !verdict.Valid {
			return models.ScoreReport{}, &rejection{reason: "qa rejected grading: " + verdict.Feedback}
		}

		var report models.ScoreReport
		if err := decodeStructured(candidate, scoreReportSchema, &report); err != nil {
			return models.ScoreReport{}, err
		}
		if !compare {
			report.Comparison = ""
		}
		report.Comparison = strings.TrimSpace(report.Comparison)
		return report, nil
	}

	validate := func(report models.ScoreReport) error {
		return models.ValidateScoreReport(report, input.Rubric)
	}

	return Retry(ctx, s.policy(), "scoring", produce, validate)
}

func (s *Scorer) review(ctx context.Context, input ScoreInput, candidate string) (models.QAVerdict, error) {
	raw, err := s.generate(ctx, ai.TemplateGradingQA, s.settings.Budgets.QA, true, map[string]any{
		"grade":     string(input.Grade),
		"score":     candidate,
		"max_score": input.Rubric.MaxScore(),
	})
	if err != nil {
		return models.QAVerdict{}, fmt.Errorf("qa review: %w", err)
	}

	var verdict models.QAVerdict
	if err := decodeStructured(raw, qaVerdictSchema, &verdict); err != nil {
		return models.QAVerdict{}, fmt.Errorf("qa review: %w", err)
	}
	if !verdict.Valid && strings.TrimSpace(verdict.Feedback) == "" {
		verdict.Feedback = "no feedback given"
	}
	return verdict, nil
}
