package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/database"
	"github.com/noah-isme/gema-essay-api/internal/handler"
	"github.com/noah-isme/gema-essay-api/internal/middleware"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/internal/router"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	var sessions repository.SessionRepository
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		sessions = repository.NewRedisSessionRepository(redisClient, cfg.SessionTTL)
	} else {
		logger.Warn().Msg("redis url not configured; sessions are kept in memory")
		sessions = repository.NewMemorySessionRepository(cfg.SessionTTL)
	}

	events := service.AssessmentEvents(service.NoopAssessmentEvents{})
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		events = service.NewNATSAssessmentEvents(natsConn, cfg.NATSSubject, logger)
	}

	generator, err := ai.NewGenerator(cfg.ProviderConfig(logger))
	if err != nil {
		log.Fatalf("failed to create ai generator: %v", err)
	}

	components := service.NewAssessmentComponents(generator, service.SettingsFromConfig(cfg.Grading), logger)
	assessmentService := service.NewAssessmentService(sessions, components, events, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Scoring makes up to ten model calls.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: assessmentHandler,
		SampleHandler:     handler.NewSampleHandler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
