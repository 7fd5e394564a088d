package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/fixtures"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/utils"
)

// SampleHandler serves the canned example essays.
type SampleHandler struct{}

// NewSampleHandler constructs a sample handler.
func NewSampleHandler() *SampleHandler {
	return &SampleHandler{}
}

// Register wires sample routes.
func (h *SampleHandler) Register(router fiber.Router) {
	router.Get("/:quality", h.get)
}

func (h *SampleHandler) get(c *fiber.Ctx) error {
	quality, err := models.ParseQualityLevel(c.Params("quality"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	essay, ok := fixtures.SampleEssay(quality)
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "sample not found")
	}

	return utils.SendSuccess(c, "sample essay retrieved", dto.EssayResponse{
		Quality: string(quality),
		Source:  "sample",
		Topic:   fixtures.SampleTopic,
		Essay:   essay,
	})
}
