package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/crewline/automation/pkg/cmd"
	"github.com/crewline/automation/pkg/log"
	"github.com/crewline/automation/pkg/otelhelper"
	"github.com/crewline/automation/pkg/schedule"
	"github.com/crewline/automation/pkg/web"
	"github.com/crewline/automation/pkg/workflow"
)

type runConfig struct {
	databaseURL string
	eventBus    string
	apiBaseURL  string
	apiToken    string
	redisURL    string
	httpPort    int
}

// run wires the full engine: persistence, bus, executors, the
// matcher/scheduler pipeline, the cron source and the HTTP API, then blocks
// until a shutdown signal arrives.
func run(ctx context.Context, cfg runConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.WithModule("crewline-automation")

	tracer, err := otelhelper.NewTracer(ctx, "crewline-automation")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	persistence, err := cmd.NewPersistence(ctx, logger, cfg.databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.Background()); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	bus, err := cmd.NewEventBus(cfg.eventBus, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	collaborators, err := cmd.NewCollaborators(logger, cfg.apiBaseURL, cfg.apiToken, cfg.redisURL)
	if err != nil {
		return err
	}

	registry := cmd.NewRegistry(logger, collaborators)

	matcher := workflow.NewMatcher(persistence, logger)
	scheduler := workflow.NewScheduler(
		registry,
		persistence.Executions(),
		bus,
		clockwork.NewRealClock(),
		tracer,
		logger,
	)
	dispatcher := workflow.NewDispatcher(matcher, scheduler, persistence.Definitions(), bus, logger)
	service := workflow.NewService(persistence, bus, registry, logger)

	// Resume what a previous process left behind before taking new events.
	recovery := workflow.NewRecovery(persistence, scheduler, logger)
	if err := recovery.Resume(ctx); err != nil {
		return fmt.Errorf("startup recovery failed: %w", err)
	}

	if err := dispatcher.Start(ctx); err != nil {
		return err
	}

	source := schedule.NewSource(persistence.Definitions(), bus, logger)
	if err := source.Start(ctx); err != nil {
		return err
	}

	app := web.NewRouter(web.NewAPIHandlers(service, registry))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.httpPort)
		logger.Info("HTTP API listening", "addr", addr)

		if err := app.Listen(addr); err != nil {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	logger.Info("Crewline automation engine started")

	<-ctx.Done()

	logger.Info("Shutting down")

	if err := app.Shutdown(); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}

	source.Stop()

	// In-flight executions checkpoint on interruption; recovery picks them up
	// on the next start.
	dispatcher.Wait()

	logger.Info("Shutdown complete")

	return nil
}
