package ai

import (
	"context"
	"errors"
)

// TemplateName identifies one of the registered generation templates.
type TemplateName string

const (
	TemplateRubric    TemplateName = "rubric"
	TemplateQuestion  TemplateName = "question"
	TemplateValidity  TemplateName = "validity"
	TemplateGrading   TemplateName = "grading"
	TemplateGradingQA TemplateName = "grading_qa"
	TemplateTestEssay TemplateName = "test_essay"
)

// ErrEmptyOutput is returned when the model produced no text.
var ErrEmptyOutput = errors.New("generator returned empty output")

// GenerationRequest is a templated request plus the generation budget.
type GenerationRequest struct {
	Template    TemplateName
	Params      map[string]any
	MaxTokens   int
	Temperature float32
	// JSON asks the backend to constrain output to a JSON object when it supports it.
	JSON bool
}

// Chat roles used in rendered messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Generator describes a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
