// The vendura-engine binary runs the workflow automation engine: the HTTP
// API for workflow management plus the dispatcher consuming business events.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/vendura/automation/pkg/actions"
	"github.com/vendura/automation/pkg/cmd"
	"github.com/vendura/automation/pkg/dispatcher"
	"github.com/vendura/automation/pkg/engine"
	"github.com/vendura/automation/pkg/executor"
	"github.com/vendura/automation/pkg/ledger"
	"github.com/vendura/automation/pkg/log"
	"github.com/vendura/automation/pkg/otelhelper"
	"github.com/vendura/automation/pkg/schema"
	"github.com/vendura/automation/pkg/services"
	"github.com/vendura/automation/pkg/web"
)

const (
	defaultPort             = 9090
	defaultExecutionTimeout = 5 * time.Minute
	defaultRetentionAge     = 90 * 24 * time.Hour
	retentionSchedule       = "0 3 * * *"
)

func main() {
	logger := log.WithModule("vendura-engine")

	command := &cli.Command{
		Name:                  "vendura-engine",
		Usage:                 "Run the workflow automation engine",
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
				Usage:   "Workflow store URL (file://<path>)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "ledger-url",
				Usage:   "Execution ledger URL (redis://...; empty for in-memory)",
				Sources: cli.EnvVars("LEDGER_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "execution-timeout",
				Usage:   "Wall-clock cap per workflow execution",
				Value:   defaultExecutionTimeout,
				Sources: cli.EnvVars("EXECUTION_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "retention-age",
				Usage:   "Age after which finished executions are pruned",
				Value:   defaultRetentionAge,
				Sources: cli.EnvVars("RETENTION_AGE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Engine exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("vendura-engine")
	logger.InfoContext(ctx, "Initializing Vendura automation engine")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := otelhelper.NewTracer(ctx, "vendura-engine")
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)
	}

	store := cmd.NewPersistence(command.String("database-url"))
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	executionLedger, err := cmd.NewLedger(command.String("ledger-url"))
	if err != nil {
		return err
	}
	defer func() {
		if err := executionLedger.Close(context.Background()); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	}()

	bus, err := cmd.NewEventBus(command.String("event-bus"), "vendura-engine", logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	registry := actions.NewRegistry(logger)
	registry.RegisterDefaults(actions.DevCollaborators(logger))

	executorOpts := []executor.Option{}
	engineOpts := []engine.Option{
		engine.WithExecutionTimeout(command.Duration("execution-timeout")),
		engine.WithEventBus(bus),
	}

	if tracer != nil {
		executorOpts = append(executorOpts, executor.WithTracer(tracer))
		engineOpts = append(engineOpts, engine.WithTracer(tracer))
	}

	actionExecutor := executor.NewExecutor(registry, logger, executorOpts...)
	eng := engine.NewEngine(store, executionLedger, actionExecutor, logger, engineOpts...)

	retention := ledger.NewRetention(executionLedger, logger, retentionSchedule, command.Duration("retention-age"))
	if err := retention.Start(ctx); err != nil {
		return err
	}
	defer retention.Stop()

	disp := dispatcher.NewDispatcher(store, bus, eng, logger)
	if err := disp.Start(ctx); err != nil {
		return err
	}
	defer disp.Stop()

	workflowService := services.NewWorkflow(store, schema.NewValidator(), eng, executionLedger)
	handlers := web.NewAPIHandlers(workflowService, validator.New(validator.WithRequiredStructEnabled()))
	app := web.NewApp(handlers)

	go func() {
		<-ctx.Done()

		logger.Info("Shutting down API server")

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	logger.InfoContext(ctx, "Starting API server", "port", command.Int("port"))

	return app.Listen(":" + strconv.Itoa(command.Int("port")))
}
