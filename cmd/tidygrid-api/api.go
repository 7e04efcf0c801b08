// Package main provides the TidyGrid API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/robfig/cron/v3"
	"github.com/tidygrid/tidygrid/pkg/ai"
	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/services"
	"github.com/tidygrid/tidygrid/pkg/web"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	aiClient    *ai.Client
	tracer      trace.Tracer
	validate    *validator.Validate
	sessionTTL  time.Duration

	sessionService *services.Session
	cron           *cron.Cron
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	aiClient *ai.Client,
	tracer trace.Tracer,
	sessionTTL time.Duration,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		aiClient:    aiClient,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		sessionTTL:  sessionTTL,
	}
}

func (a *API) App() *fiber.App {
	a.sessionService = services.NewSession(a.persistence, a.eventBus, a.logger)
	rulesService := services.NewRules(a.persistence, a.eventBus, a.logger)
	validationService := services.NewValidation(a.persistence, a.eventBus, a.logger, a.tracer)
	correctionsService := services.NewCorrections(a.persistence, a.eventBus, a.logger)
	exportService := services.NewExport(a.persistence, a.eventBus, a.logger)
	suggestService := services.NewSuggest(a.persistence, a.aiClient, a.logger)

	handlers := web.NewAPIHandlers(
		a.sessionService,
		rulesService,
		validationService,
		correctionsService,
		exportService,
		suggestService,
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("TidyGrid API")
	})

	handlers.RegisterRoutes(app)

	return app
}

// startSweeper schedules the hourly cleanup of sessions past their TTL.
func (a *API) startSweeper(ctx context.Context) error {
	if a.sessionTTL <= 0 {
		return nil
	}

	a.cron = cron.New()

	_, err := a.cron.AddFunc("@hourly", func() {
		swept, err := a.sessionService.SweepExpired(ctx, a.sessionTTL)
		if err != nil {
			a.logger.Error("Session sweep failed", "error", err)

			return
		}

		if swept > 0 {
			a.logger.Info("Swept expired sessions", "count", swept)
		}
	})
	if err != nil {
		return err
	}

	a.cron.Start()

	return nil
}

func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	if err := a.startSweeper(ctx); err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}

func (a *API) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
}
