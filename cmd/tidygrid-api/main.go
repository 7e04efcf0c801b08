package main

import (
	"context"
	"os"
	"time"

	"github.com/tidygrid/tidygrid/pkg/ai"
	"github.com/tidygrid/tidygrid/pkg/cmd"
	"github.com/tidygrid/tidygrid/pkg/log"
	"github.com/tidygrid/tidygrid/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "tidygrid-api",
		Usage:                 "Upload, validate and export resource planning spreadsheets",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Storage URL (file path or redis://...)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "ai-endpoint",
				Usage:   "Chat completion endpoint for the AI collaborator",
				Sources: cli.EnvVars("AI_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "ai-api-key",
				Usage:   "API key for the AI collaborator",
				Sources: cli.EnvVars("AI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "ai-model",
				Usage:   "Model name for the AI collaborator",
				Value:   "gpt-4o-mini",
				Sources: cli.EnvVars("AI_MODEL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "Retention period for idle sessions (0 disables the sweep)",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing TidyGrid API")

			var tracer trace.Tracer

			if command.Bool("tracing") {
				t, err := otelhelper.NewTracer(ctx, "tidygrid-api")
				if err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracer, continuing without tracing", "error", err)
				} else {
					tracer = t
				}
			}

			store, err := cmd.NewPersistence(command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var aiClient *ai.Client

			if endpoint := command.String("ai-endpoint"); endpoint != "" {
				aiClient = ai.NewClient(ai.Config{
					Endpoint: endpoint,
					APIKey:   command.String("ai-api-key"),
					Model:    command.String("ai-model"),
				}, logger, tracer)
			}

			api := NewAPI(
				logger,
				store,
				eventBus,
				aiClient,
				tracer,
				command.Duration("session-ttl"),
			)
			defer api.Stop()

			if err := api.Start(ctx, command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
