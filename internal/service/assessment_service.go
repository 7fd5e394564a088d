package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/observability"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

// ErrSessionNotFound indicates the session id is unknown or expired.
var ErrSessionNotFound = repository.ErrSessionNotFound

// ErrGenerationUnavailable indicates a step ran out of attempts without a valid result.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// ErrTopicRejected indicates the generated prompt did not reference the requested topic.
var ErrTopicRejected = errors.New("topic rejected")

// ErrRubricRequired indicates a grade with a valid rubric must be selected first.
var ErrRubricRequired = errors.New("rubric required")

// ErrPromptRequired indicates an accepted prompt must exist before essays are handled.
var ErrPromptRequired = errors.New("prompt required")

// ErrEmptyText indicates the supplied topic or essay was blank.
var ErrEmptyText = errors.New("text is empty")

// SubmissionResult is the outcome of checking and, when valid, scoring an essay.
type SubmissionResult struct {
	Validity models.ValidityResult
	Score    *models.ScoreReport
	MaxScore int
}

// AssessmentService exposes the session-scoped assessment operations.
type AssessmentService interface {
	CreateSession(ctx context.Context) (models.Session, error)
	GetSession(ctx context.Context, id string) (models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SetGrade(ctx context.Context, id string, grade models.GradeLevel) (models.Rubric, error)
	DisplayRubric(ctx context.Context, id string) (string, bool, error)
	MaxScore(ctx context.Context, id string) (int, bool, error)
	GetOrCreatePrompt(ctx context.Context, id string, topic string) (string, error)
	GenerateEssay(ctx context.Context, id string, quality models.QualityLevel) (string, error)
	CheckValidity(ctx context.Context, id string, essay string) (models.ValidityResult, error)
	Score(ctx context.Context, id string, essay string, previousEssay string) (models.ScoreReport, error)
	Submit(ctx context.Context, id string, essay string) (SubmissionResult, error)
}

// AssessmentComponents are the orchestration steps the service chains together.
type AssessmentComponents struct {
	Rubrics  *RubricBuilder
	Prompts  *PromptBuilder
	Validity *ValidityChecker
	Scorer   *Scorer
	Essays   *EssayGenerator
}

// NewAssessmentComponents builds every orchestration step on one generator.
func NewAssessmentComponents(generator ai.Generator, settings GenerationSettings, logger zerolog.Logger) AssessmentComponents {
	return AssessmentComponents{
		Rubrics:  NewRubricBuilder(generator, settings, logger),
		Prompts:  NewPromptBuilder(generator, settings, logger),
		Validity: NewValidityChecker(generator, settings, logger),
		Scorer:   NewScorer(generator, settings, logger),
		Essays:   NewEssayGenerator(generator, settings, logger),
	}
}

type assessmentService struct {
	sessions   repository.SessionRepository
	components AssessmentComponents
	events     AssessmentEvents
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	newID      func() string
	now        func() time.Time
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(sessions repository.SessionRepository, components AssessmentComponents, events AssessmentEvents, logger zerolog.Logger) AssessmentService {
	if events == nil {
		events = NoopAssessmentEvents{}
	}
	return &assessmentService{
		sessions:   sessions,
		components: components,
		events:     events,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "assessment_service").Logger(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

func (s *assessmentService) CreateSession(ctx context.Context) (models.Session, error) {
	session := models.Session{ID: s.newID()}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return models.Session{}, err
	}
	s.logger.Info().Str("session_id", session.ID).Msg("assessment session created")
	return session, nil
}

func (s *assessmentService) GetSession(ctx context.Context, id string) (models.Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *assessmentService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", id).Msg("assessment session deleted")
	return nil
}

func (s *assessmentService) SetGrade(ctx context.Context, id string, grade models.GradeLevel) (models.Rubric, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return models.Rubric{}, err
	}

	if !session.SelectGrade(grade) {
		return *session.Rubric, nil
	}

	outcome := s.components.Rubrics.Build(ctx, grade)
	if outcome.OK() {
		session.StoreRubric(outcome.Value)
	}
	if err := s.sessions.Save(ctx, &session); err != nil {
		return models.Rubric{}, err
	}
	if !outcome.OK() {
		return models.Rubric{}, unavailable("rubric", outcome)
	}

	s.logger.Info().
		Str("session_id", id).
		Str("grade", string(grade)).
		Int("sections", len(outcome.Value.Sections)).
		Int("attempts", outcome.Attempts).
		Msg("rubric generated")
	return outcome.Value, nil
}

func (s *assessmentService) DisplayRubric(ctx context.Context, id string) (string, bool, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", false, err
	}
	if session.Rubric == nil {
		return "", false, nil
	}
	return session.Rubric.DisplayTable(), true, nil
}

func (s *assessmentService) MaxScore(ctx context.Context, id string) (int, bool, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if session.Rubric == nil {
		return 0, false, nil
	}
	return session.Rubric.MaxScore(), true, nil
}

func (s *assessmentService) GetOrCreatePrompt(ctx context.Context, id string, topic string) (string, error) {
	topic, err := s.cleanTopic(topic)
	if err != nil {
		return "", err
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if session.Rubric == nil {
		return "", ErrRubricRequired
	}

	if entry, ok := session.CachedPrompt(topic); ok {
		if entry.Rejected {
			return "", ErrTopicRejected
		}
		return entry.Prompt, nil
	}

	session.ClearPrompt()
	outcome := s.components.Prompts.Build(ctx, session.Grade, topic, *session.Rubric)
	if !outcome.OK() {
		if err := s.sessions.Save(ctx, &session); err != nil {
			return "", err
		}
		return "", unavailable("question", outcome)
	}

	if !MentionsTopic(outcome.Value, topic) {
		session.RejectTopic(topic)
		if err := s.sessions.Save(ctx, &session); err != nil {
			return "", err
		}
		observability.TopicRejections().Inc()
		s.logger.Warn().Str("session_id", id).Str("topic", topic).Msg("prompt does not mention topic")
		return "", ErrTopicRejected
	}

	session.StorePrompt(topic, outcome.Value)
	if err := s.sessions.Save(ctx, &session); err != nil {
		return "", err
	}
	return outcome.Value, nil
}

func (s *assessmentService) GenerateEssay(ctx context.Context, id string, quality models.QualityLevel) (string, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	_, prompt, ok := session.ActivePrompt()
	if !ok || session.Rubric == nil {
		return "", ErrPromptRequired
	}

	outcome := s.components.Essays.Generate(ctx, session.Grade, prompt, *session.Rubric, quality)
	if !outcome.OK() {
		return "", unavailable("test_essay", outcome)
	}
	return outcome.Value, nil
}

func (s *assessmentService) CheckValidity(ctx context.Context, id string, essay string) (models.ValidityResult, error) {
	essay, err := cleanEssay(essay)
	if err != nil {
		return models.ValidityResult{}, err
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return models.ValidityResult{}, err
	}
	return s.checkValidity(ctx, session, essay)
}

func (s *assessmentService) Score(ctx context.Context, id string, essay string, previousEssay string) (models.ScoreReport, error) {
	essay, err := cleanEssay(essay)
	if err != nil {
		return models.ScoreReport{}, err
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return models.ScoreReport{}, err
	}
	return s.score(ctx, &session, essay, previousEssay)
}

func (s *assessmentService) Submit(ctx context.Context, id string, essay string) (SubmissionResult, error) {
	essay, err := cleanEssay(essay)
	if err != nil {
		return SubmissionResult{}, err
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SubmissionResult{}, err
	}

	validity, err := s.checkValidity(ctx, session, essay)
	if err != nil {
		return SubmissionResult{}, err
	}
	result := SubmissionResult{Validity: validity, MaxScore: session.Rubric.MaxScore()}
	if !validity.Valid {
		return result, nil
	}

	report, err := s.score(ctx, &session, essay, session.PreviousEssay)
	if err != nil {
		return SubmissionResult{}, err
	}
	result.Score = &report
	return result, nil
}

func (s *assessmentService) checkValidity(ctx context.Context, session models.Session, essay string) (models.ValidityResult, error) {
	topic, prompt, ok := session.ActivePrompt()
	if !ok || session.Rubric == nil {
		return models.ValidityResult{}, ErrPromptRequired
	}

	outcome := s.components.Validity.Check(ctx, session.Grade, topic, prompt, essay)
	if !outcome.OK() {
		return models.ValidityResult{}, unavailable("validity", outcome)
	}
	return outcome.Value, nil
}

// score grades essay and, once accepted, makes it the session's comparison baseline.
func (s *assessmentService) score(ctx context.Context, session *models.Session, essay, previousEssay string) (models.ScoreReport, error) {
	topic, prompt, ok := session.ActivePrompt()
	if !ok || session.Rubric == nil {
		return models.ScoreReport{}, ErrPromptRequired
	}

	outcome := s.components.Scorer.Score(ctx, ScoreInput{
		Grade:         session.Grade,
		Topic:         topic,
		Prompt:        prompt,
		Rubric:        *session.Rubric,
		Essay:         essay,
		PreviousEssay: previousEssay,
	})
	if !outcome.OK() {
		return models.ScoreReport{}, unavailable("scoring", outcome)
	}

	session.RecordScored(essay)
	if err := s.sessions.Save(ctx, session); err != nil {
		return models.ScoreReport{}, err
	}

	maxScore := session.Rubric.MaxScore()
	observability.EssayScores().WithLabelValues(string(session.Grade)).Observe(float64(outcome.Value.Total) / float64(maxScore))
	s.events.EssayScored(ctx, EssayScoredEvent{
		SessionID: session.ID,
		Grade:     string(session.Grade),
		Topic:     topic,
		Total:     outcome.Value.Total,
		MaxScore:  maxScore,
		ScoredAt:  s.now().UTC(),
	})
	return outcome.Value, nil
}

// cleanTopic strips markup from a topic while keeping its characters readable.
func (s *assessmentService) cleanTopic(topic string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(topic)))
	if cleaned == "" {
		return "", ErrEmptyText
	}
	return cleaned, nil
}

// cleanEssay only trims; essays reach the model as plain text and may contain '<'.
func cleanEssay(essay string) (string, error) {
	cleaned := strings.TrimSpace(essay)
	if cleaned == "" {
		return "", ErrEmptyText
	}
	return cleaned, nil
}

func unavailable[T any](step string, outcome Outcome[T]) error {
	if outcome.Status == OutcomeCanceled {
		return outcome.Cause
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", ErrGenerationUnavailable, step, outcome.Attempts, outcome.Cause)
}
