package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/handler"
	"github.com/noah-isme/gema-essay-api/internal/middleware"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/internal/service"
)

func newTestApp(t *testing.T, rateLimit int) *fiber.App {
	t.Helper()
	cfg := config.Config{AppName: "GEMA Essay API", AppEnv: "test", AIProvider: "openai", AIModel: "gpt-4o", RateLimitMax: rateLimit, RateLimitWindow: time.Minute}

	svc := service.NewAssessmentService(
		repository.NewMemorySessionRepository(0),
		service.NewAssessmentComponents(nil, service.DefaultGenerationSettings(), zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)

	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	Register(app, cfg, Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()),
		SampleHandler:     handler.NewSampleHandler(),
	})
	return app
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, 10)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "GEMA Essay API", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "essay_http_requests_total")
}

func TestSessionRoutesAreRateLimited(t *testing.T) {
	app := newTestApp(t, 2)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/samples/Low", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
