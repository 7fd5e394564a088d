package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// PromptSections are the headings every essay prompt must contain, in order.
var PromptSections = []string{"Introduction", "Context", "Question"}

// PromptBuilder generates three-part essay prompts conditioned on a rubric.
type PromptBuilder struct {
	step
}

// NewPromptBuilder constructs a prompt builder.
func NewPromptBuilder(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) *PromptBuilder {
	return &PromptBuilder{step: newStep(generator, settings, logger, "prompt_builder")}
}

// Build generates a prompt for topic. Callers still have to run MentionsTopic on the
// result; that check is not retried.
func (b *PromptBuilder) Build(ctx context.Context, grade models.GradeLevel, topic string, rubric models.Rubric) Outcome[string] {
	params := map[string]any{
		"grade":  string(grade),
		"topic":  topic,
		"rubric": rubric.JSON(),
	}

	produce := func(ctx context.Context) (string, error) {
		raw, err := b.generate(ctx, ai.TemplateQuestion, b.settings.Budgets.Question, false, params)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(raw), nil
	}

	return Retry(ctx, b.policy(), "question", produce, ValidatePromptSections)
}

// ValidatePromptSections requires every section marker to appear in the prompt.
func ValidatePromptSections(prompt string) error {
	var missing []string
	for _, marker := range PromptSections {
		if !strings.Contains(prompt, marker) {
			missing = append(missing, marker)
		}
	}
	if len(missing) > 0 {
		return &rejection{reason: "prompt is missing sections: " + strings.Join(missing, ", ")}
	}
	return nil
}

// MentionsTopic is the topic relevance guard: the literal topic must appear in the prompt.
// It is a weak heuristic; paraphrased topics are rejected and echoed ones accepted.
func MentionsTopic(prompt, topic string) bool {
	return strings.Contains(prompt, topic)
}
