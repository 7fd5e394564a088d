package dto

import (
	"time"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// SetGradeRequest selects the grade a session is assessed at. An empty grade selects the default.
type SetGradeRequest struct {
	Grade string `json:"grade" validate:"omitempty,max=16"`
}

// TopicRequest asks for an essay prompt on a topic.
type TopicRequest struct {
	Topic string `json:"topic" validate:"required,min=1,max=200"`
}

// EssayRequest submits an essay for the session's active prompt.
type EssayRequest struct {
	Essay string `json:"essay" validate:"required,min=1,max=20000"`
}

// GenerateEssayRequest asks for a synthetic essay.
type GenerateEssayRequest struct {
	Quality string `json:"quality" validate:"required,max=16"`
}

// SessionResponse describes a session to API consumers.
type SessionResponse struct {
	ID        string    `json:"id"`
	Grade     string    `json:"grade,omitempty"`
	Topic     string    `json:"topic,omitempty"`
	HasRubric bool      `json:"has_rubric"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionResponse builds a response DTO from a session.
func NewSessionResponse(session models.Session) SessionResponse {
	topic, _, _ := session.ActivePrompt()
	return SessionResponse{
		ID:        session.ID,
		Grade:     string(session.Grade),
		Topic:     topic,
		HasRubric: session.Rubric != nil,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// RubricResponse carries the display table and the maximum score.
type RubricResponse struct {
	Grade    string           `json:"grade"`
	Table    string           `json:"table"`
	MaxScore int              `json:"max_score"`
	Sections []models.Section `json:"sections"`
}

// NewRubricResponse builds a response DTO from a validated rubric.
func NewRubricResponse(grade models.GradeLevel, rubric models.Rubric) RubricResponse {
	return RubricResponse{
		Grade:    string(grade),
		Table:    rubric.DisplayTable(),
		MaxScore: rubric.MaxScore(),
		Sections: rubric.Sections,
	}
}

// RubricTableResponse carries the rubric as shown to students.
type RubricTableResponse struct {
	Table    string `json:"table"`
	MaxScore int    `json:"max_score"`
}

// PromptResponse carries the generated essay prompt.
type PromptResponse struct {
	Topic  string `json:"topic"`
	Prompt string `json:"prompt"`
}

// EssayResponse carries a synthetic or canned essay.
type EssayResponse struct {
	Quality string `json:"quality"`
	Source  string `json:"source"`
	Topic   string `json:"topic,omitempty"`
	Essay   string `json:"essay"`
}

// ValidityResponse reports whether an essay answers the prompt.
type ValidityResponse struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback"`
}

// ScoreResponse is an accepted score report.
type ScoreResponse struct {
	Table      string `json:"table"`
	Total      int    `json:"total"`
	MaxScore   int    `json:"max_score"`
	Summary    string `json:"summary"`
	Comparison string `json:"comparison,omitempty"`
}

// NewScoreResponse builds a response DTO from a score report.
func NewScoreResponse(report models.ScoreReport, maxScore int) ScoreResponse {
	return ScoreResponse{
		Table:      report.Table,
		Total:      report.Total,
		MaxScore:   maxScore,
		Summary:    report.Summary,
		Comparison: report.Comparison,
	}
}

// EssaySubmissionResponse is the result of checking and, when valid, scoring an essay.
type EssaySubmissionResponse struct {
	Validity ValidityResponse `json:"validity"`
	Score    *ScoreResponse   `json:"score,omitempty"`
}
