package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

func TestRubricBuilderAcceptsFencedRubric(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateRubric, rubricJSON(t))
	builder := NewRubricBuilder(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeFourth)
	require.True(t, outcome.OK())
	require.Len(t, outcome.Value.Sections, len(rubricSectionNames))
	require.Equal(t, 15, outcome.Value.MaxScore())
	require.Equal(t, 1, gen.count(ai.TemplateRubric))
	gen.requireRendered(t)

	call := gen.lastCall(ai.TemplateRubric)
	require.Equal(t, 5000, call.MaxTokens)
	require.Equal(t, DefaultStandard, call.Params["standard"])
	require.Equal(t, "Fourth", call.Params["grade"])
}

func TestRubricBuilderRetriesStructuralViolations(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateRubric, badRubricJSON, "not json", rubricJSON(t))
	builder := NewRubricBuilder(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeSeventh)
	require.True(t, outcome.OK())
	require.Equal(t, 3, outcome.Attempts)
	require.Equal(t, 3, gen.count(ai.TemplateRubric))
}

func TestRubricBuilderExhaustsWithoutPartialRubric(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateRubric, badRubricJSON)
	builder := NewRubricBuilder(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeFourth)
	require.Equal(t, OutcomeExhausted, outcome.Status)
	require.Empty(t, outcome.Value.Sections)
	require.Equal(t, 5, gen.count(ai.TemplateRubric))

	var violation *models.RubricViolation
	require.ErrorAs(t, outcome.Cause, &violation)
	require.Equal(t, models.ViolationCriteriaCount, violation.Kind)
}

func TestPromptBuilderExhaustsWhenContextSectionMissing(t *testing.T) {
	prompt := strings.Replace(promptText("golf"), "Context", "Background", 1)
	gen := newScriptedGenerator().on(ai.TemplateQuestion, prompt)
	builder := NewPromptBuilder(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeFourth, "golf", testRubric())
	require.Equal(t, OutcomeExhausted, outcome.Status)
	require.Empty(t, outcome.Value)
	require.Equal(t, 5, gen.count(ai.TemplateQuestion))
	require.Contains(t, outcome.Cause.Error(), "Context")
	gen.requireRendered(t)
}

func TestPromptBuilderReturnsTrimmedPrompt(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateQuestion, "\n"+promptText("golf")+"\n\n")
	builder := NewPromptBuilder(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeFourth, "golf", testRubric())
	require.True(t, outcome.OK())
	require.Equal(t, promptText("golf"), outcome.Value)
	require.Contains(t, gen.lastCall(ai.TemplateQuestion).Params["rubric"], "Organization")
}

func TestMentionsTopicIsLiteral(t *testing.T) {
	prompt := promptText("golf")
	require.True(t, MentionsTopic(prompt, "golf"))
	require.False(t, MentionsTopic(prompt, "Golf"))
	require.False(t, MentionsTopic(prompt, "tennis"))
}

func TestValidityCheckerRetriesMalformedOutput(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateValidity,
		`{"valid": true}`,
		"```json\n{\"valid\": false, \"feedback\": \" The essay is about tennis. \"}\n```",
	)
	checker := NewValidityChecker(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := checker.Check(context.Background(), models.GradeFourth, "golf", promptText("golf"), "Tennis is fun.")
	require.True(t, outcome.OK())
	require.False(t, outcome.Value.Valid)
	require.Equal(t, "The essay is about tennis.", outcome.Value.Feedback)
	require.Equal(t, 2, gen.count(ai.TemplateValidity))
	require.True(t, gen.lastCall(ai.TemplateValidity).JSON)
	require.Equal(t, 2000, gen.lastCall(ai.TemplateValidity).MaxTokens)
	gen.requireRendered(t)
}

func TestScorerMakesTwoCallsPerRejectedAttempt(t *testing.T) {
	gen := newScriptedGenerator().
		on(ai.TemplateGrading, scoreJSON(t, 10, "")).
		on(ai.TemplateGradingQA, qaReject, qaReject, qaAccept)
	scorer := NewScorer(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := scorer.Score(context.Background(), ScoreInput{
		Grade:  models.GradeFourth,
		Topic:  "golf",
		Prompt: promptText("golf"),
		Rubric: testRubric(),
		Essay:  "Golf teaches patience.",
	})
	require.True(t, outcome.OK())
	require.Equal(t, 3, outcome.Attempts)
	require.Equal(t, 3, gen.count(ai.TemplateGrading))
	require.Equal(t, 3, gen.count(ai.TemplateGradingQA))
	require.Len(t, gen.calls, 6)
	require.Equal(t, 10, outcome.Value.Total)
	require.Equal(t, 15, gen.lastCall(ai.TemplateGradingQA).Params["max_score"])
	gen.requireRendered(t)
}

func TestScorerExhaustsWhenReviewerNeverAccepts(t *testing.T) {
	gen := newScriptedGenerator().
		on(ai.TemplateGrading, scoreJSON(t, 10, "")).
		on(ai.TemplateGradingQA, qaReject)
	scorer := NewScorer(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := scorer.Score(context.Background(), ScoreInput{
		Grade:  models.GradeFourth,
		Topic:  "golf",
		Prompt: promptText("golf"),
		Rubric: testRubric(),
		Essay:  "Golf teaches patience.",
	})
	require.Equal(t, OutcomeExhausted, outcome.Status)
	require.Equal(t, 5, gen.count(ai.TemplateGrading))
	require.Equal(t, 5, gen.count(ai.TemplateGradingQA))

	var rejected *rejection
	require.True(t, errors.As(outcome.Cause, &rejected))
}

func TestScorerRejectsTotalsAboveMaximum(t *testing.T) {
	gen := newScriptedGenerator().
		on(ai.TemplateGrading, scoreJSON(t, 16, ""), scoreJSON(t, 12, "")).
		on(ai.TemplateGradingQA, qaAccept)
	scorer := NewScorer(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := scorer.Score(context.Background(), ScoreInput{
		Grade:  models.GradeFourth,
		Topic:  "golf",
		Prompt: promptText("golf"),
		Rubric: testRubric(),
		Essay:  "Golf teaches patience.",
	})
	require.True(t, outcome.OK())
	require.Equal(t, 12, outcome.Value.Total)
	require.Equal(t, 2, outcome.Attempts)
}

func TestScorerComparisonEligibility(t *testing.T) {
	longPrevious := "Golf is a quiet game that rewards patience and careful practice every day."
	require.Greater(t, models.WordCount(longPrevious), models.ComparisonMinWords)

	cases := []struct {
		name       string
		previous   string
		compare    bool
		comparison string
	}{
		{name: "no previous essay", previous: "", compare: false, comparison: ""},
		{name: "short previous essay", previous: "Golf is fun.", compare: false, comparison: ""},
		{name: "eligible previous essay", previous: longPrevious, compare: true, comparison: "You added more detail this time."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := newScriptedGenerator().
				on(ai.TemplateGrading, scoreJSON(t, 9, "You added more detail this time.")).
				on(ai.TemplateGradingQA, qaAccept)
			scorer := NewScorer(gen, DefaultGenerationSettings(), zerolog.Nop())

			outcome := scorer.Score(context.Background(), ScoreInput{
				Grade:         models.GradeFourth,
				Topic:         "golf",
				Prompt:        promptText("golf"),
				Rubric:        testRubric(),
				Essay:         "Golf teaches patience and focus.",
				PreviousEssay: tc.previous,
			})
			require.True(t, outcome.OK())
			require.Equal(t, tc.comparison, outcome.Value.Comparison)

			call := gen.lastCall(ai.TemplateGrading)
			require.Equal(t, tc.compare, call.Params["compare"])
			gen.requireRendered(t)
		})
	}
}

func TestEssayGeneratorSendsQualityAndRubric(t *testing.T) {
	gen := newScriptedGenerator().on(ai.TemplateTestEssay, "   ", "Golf is a game of patience.")
	essays := NewEssayGenerator(gen, DefaultGenerationSettings(), zerolog.Nop())

	outcome := essays.Generate(context.Background(), models.GradeFourth, promptText("golf"), testRubric(), models.QualityHigh)
	require.True(t, outcome.OK())
	require.Equal(t, "Golf is a game of patience.", outcome.Value)
	require.Equal(t, 2, outcome.Attempts)
	call := gen.lastCall(ai.TemplateTestEssay)
	require.Equal(t, "high", call.Params["quality"])
	require.Equal(t, testRubric().JSON(), call.Params["rubric"])
	gen.requireRendered(t)
}

func TestStepsUseConfiguredAttemptCap(t *testing.T) {
	settings := DefaultGenerationSettings()
	settings.MaxAttempts = 2
	gen := newScriptedGenerator().fail(ai.TemplateRubric, errors.New("upstream timeout"))
	builder := NewRubricBuilder(gen, settings, zerolog.Nop())

	outcome := builder.Build(context.Background(), models.GradeFourth)
	require.Equal(t, OutcomeExhausted, outcome.Status)
	require.Equal(t, 2, gen.count(ai.TemplateRubric))
}
