package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/middleware"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/internal/utils"
)

// TopicRejectedMessage is shown when a topic cannot be turned into a usable prompt.
const TopicRejectedMessage = "I'm sorry but I can't produce a prompt for that topic. Please choose a different topic."

// AssessmentHandler exposes the session-scoped assessment endpoints.
type AssessmentHandler struct {
	service   service.AssessmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(service service.AssessmentService, validator *validator.Validate, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register wires assessment routes onto the sessions group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Delete("/:id", h.delete)
	router.Put("/:id/grade", h.setGrade)
	router.Get("/:id/rubric", h.rubric)
	router.Put("/:id/topic", h.topic)
	router.Post("/:id/essays/generate", h.generateEssay)
	router.Post("/:id/essays/validity", h.validity)
	router.Post("/:id/essays", h.submit)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	session, err := h.service.CreateSession(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session created", dto.NewSessionResponse(session))
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	if err := h.service.DeleteSession(c.UserContext(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session deleted", nil)
}

func (h *AssessmentHandler) setGrade(c *fiber.Ctx) error {
	var payload dto.SetGradeRequest
	if err := h.parse(c, &payload); err != nil {
		return h.handleError(c, err)
	}

	grade := models.DefaultGradeLevel
	if payload.Grade != "" {
		parsed, err := models.ParseGradeLevel(payload.Grade)
		if err != nil {
			return h.handleError(c, err)
		}
		grade = parsed
	}

	rubric, err := h.service.SetGrade(c.UserContext(), c.Params("id"), grade)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "rubric ready", dto.NewRubricResponse(grade, rubric))
}

func (h *AssessmentHandler) rubric(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	table, ok, err := h.service.DisplayRubric(ctx, id)
	if err != nil {
		return h.handleError(c, err)
	}
	if !ok {
		return h.handleError(c, service.ErrRubricRequired)
	}
	maxScore, _, err := h.service.MaxScore(ctx, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "rubric retrieved", dto.RubricTableResponse{Table: table, MaxScore: maxScore})
}

func (h *AssessmentHandler) topic(c *fiber.Ctx) error {
	var payload dto.TopicRequest
	if err := h.parse(c, &payload); err != nil {
		return h.handleError(c, err)
	}

	prompt, err := h.service.GetOrCreatePrompt(c.UserContext(), c.Params("id"), payload.Topic)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prompt ready", dto.PromptResponse{Topic: payload.Topic, Prompt: prompt})
}

func (h *AssessmentHandler) generateEssay(c *fiber.Ctx) error {
	var payload dto.GenerateEssayRequest
	if err := h.parse(c, &payload); err != nil {
		return h.handleError(c, err)
	}
	quality, err := models.ParseQualityLevel(payload.Quality)
	if err != nil {
		return h.handleError(c, err)
	}

	essay, err := h.service.GenerateEssay(c.UserContext(), c.Params("id"), quality)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "essay generated", dto.EssayResponse{
		Quality: string(quality),
		Source:  "generated",
		Essay:   essay,
	})
}

func (h *AssessmentHandler) validity(c *fiber.Ctx) error {
	var payload dto.EssayRequest
	if err := h.parse(c, &payload); err != nil {
		return h.handleError(c, err)
	}

	result, err := h.service.CheckValidity(c.UserContext(), c.Params("id"), payload.Essay)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "essay checked", dto.ValidityResponse{Valid: result.Valid, Feedback: result.Feedback})
}

func (h *AssessmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.EssayRequest
	if err := h.parse(c, &payload); err != nil {
		return h.handleError(c, err)
	}

	result, err := h.service.Submit(c.UserContext(), c.Params("id"), payload.Essay)
	if err != nil {
		return h.handleError(c, err)
	}

	response := dto.EssaySubmissionResponse{
		Validity: dto.ValidityResponse{Valid: result.Validity.Valid, Feedback: result.Validity.Feedback},
	}
	message := "essay does not answer the prompt"
	if result.Score != nil {
		score := dto.NewScoreResponse(*result.Score, result.MaxScore)
		response.Score = &score
		message = "essay scored"
	}

	return utils.SendSuccess(c, message, response)
}

func (h *AssessmentHandler) parse(c *fiber.Ctx, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return errInvalidPayload
	}
	return h.validator.Struct(payload)
}

var errInvalidPayload = errors.New("invalid payload")

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, errInvalidPayload):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	case errors.Is(err, models.ErrUnknownGradeLevel),
		errors.Is(err, models.ErrUnknownQualityLevel),
		errors.Is(err, service.ErrEmptyText):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrRubricRequired):
		return utils.SendError(c, fiber.StatusConflict, "select a grade before continuing")
	case errors.Is(err, service.ErrPromptRequired):
		return utils.SendError(c, fiber.StatusConflict, "choose a topic before working with essays")
	case errors.Is(err, service.ErrTopicRejected):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, TopicRejectedMessage)
	case errors.Is(err, context.Canceled):
		requestLogger(h.logger, c).Debug().Err(err).Msg("request canceled")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "please try again later")
	case errors.Is(err, service.ErrGenerationUnavailable), errors.Is(err, context.DeadlineExceeded):
		requestLogger(h.logger, c).Warn().Err(err).Msg("generation unavailable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "please try again later")
	default:
		return h.internalError(c, err)
	}
}

func (h *AssessmentHandler) internalError(c *fiber.Ctx, err error) error {
	reference := middleware.GetCorrelationID(c)
	requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.SendErrorWithReference(c, fiber.StatusInternalServerError, "internal server error", reference)
}
