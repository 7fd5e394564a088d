package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/handler"
	"github.com/noah-isme/gema-essay-api/internal/middleware"
	"github.com/noah-isme/gema-essay-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssessmentHandler *handler.AssessmentHandler
	SampleHandler     *handler.SampleHandler
	// SessionLimiter guards the generation heavy session routes. Nil uses the configured limit.
	SessionLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AssessmentHandler != nil {
		limiter := deps.SessionLimiter
		if limiter == nil {
			limiter = middleware.RateLimit("sessions", cfg.RateLimitMax, cfg.RateLimitWindow)
		}
		deps.AssessmentHandler.Register(api.Group("/sessions", limiter))
	}

	if deps.SampleHandler != nil {
		deps.SampleHandler.Register(api.Group("/samples"))
	}
}
