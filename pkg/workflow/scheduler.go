package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crewline/automation/pkg/eventbus"
	"github.com/crewline/automation/pkg/events"
	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/otelhelper"
	"github.com/crewline/automation/pkg/persistence"
	"github.com/crewline/automation/pkg/registry"
	"github.com/crewline/automation/pkg/template"
)

// Scheduler runs a workflow execution through its ordered action list,
// driving the pending -> running -> completed/failed state machine.
//
// Each execution is owned by exactly one Scheduler.Run call; no other code
// mutates it, so the state transitions need no locking.
type Scheduler struct {
	registry   *registry.Registry
	executions persistence.ExecutionRepository
	publisher  eventbus.EventPublisher
	clock      clockwork.Clock
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewScheduler(
	reg *registry.Registry,
	executions persistence.ExecutionRepository,
	publisher eventbus.EventPublisher,
	clock clockwork.Clock,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		registry:   reg,
		executions: executions,
		publisher:  publisher,
		clock:      clock,
		tracer:     tracer,
		logger:     logger.With("module", "scheduler"),
	}
}

// Run executes the definition's actions against the execution's frozen data
// snapshot, fail-fast: the first action error marks the execution failed and
// later actions never run. NextActionIndex is checkpointed after every action
// so a crashed process can resume mid-sequence.
//
// A cancelled context stops the run between actions, leaving the execution
// running with its checkpoint intact for recovery on the next start.
func (s *Scheduler) Run(ctx context.Context, def *models.WorkflowDefinition, execution *models.WorkflowExecution) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, def.ID),
		attribute.String(otelhelper.WorkflowNameKey, def.Name),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	logger := s.logger.With(
		"workflow_id", def.ID,
		"execution_id", execution.ID,
		"record_id", execution.TriggerRecordID,
	)

	if execution.Status.IsTerminal() {
		return fmt.Errorf("execution %s is already %s", execution.ID, execution.Status)
	}

	startedAt := s.clock.Now().UTC()

	if execution.Status == models.ExecutionPending {
		execution.Status = models.ExecutionRunning
		execution.StartedAt = &startedAt

		err := s.executions.Save(ctx, execution)
		if err != nil {
			return fmt.Errorf("failed to mark execution running: %w", err)
		}
	}

	s.publish(ctx, execution.ID, events.NewExecutionStarted(execution.ID, def.ID))
	logger.InfoContext(ctx, "Execution started", "next_action_index", execution.NextActionIndex)

	actions := def.OrderedActions()

	for index := execution.NextActionIndex; index < len(actions); index++ {
		action := actions[index]

		err := s.waitForDelay(ctx, action)
		if err != nil {
			logger.WarnContext(ctx, "Execution interrupted during delay, checkpoint kept",
				"action_index", index,
				"error", err,
			)

			return err
		}

		err = s.runAction(ctx, execution, action, index)
		if err != nil {
			return s.fail(ctx, span, logger, def, execution, index, action, err)
		}

		execution.NextActionIndex = index + 1

		err = s.executions.Save(ctx, execution)
		if err != nil {
			return fmt.Errorf("failed to checkpoint execution: %w", err)
		}
	}

	return s.complete(ctx, logger, def, execution, startedAt)
}

// waitForDelay applies the action's configured delay, measured from the
// completion of the previous action.
func (s *Scheduler) waitForDelay(ctx context.Context, action models.ActionSpec) error {
	if action.DelayMinutes <= 0 {
		return nil
	}

	delay := time.Duration(action.DelayMinutes) * time.Minute

	select {
	case <-s.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runAction(ctx context.Context, execution *models.WorkflowExecution, action models.ActionSpec, index int) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflow.action",
		attribute.String(otelhelper.ActionTypeKey, string(action.ActionType)),
		attribute.Int(otelhelper.ActionIndexKey, index),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	executor, err := s.registry.Executor(string(action.ActionType))
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	// Placeholders are resolved once here; executors receive literal config.
	config := template.InterpolateConfig(action.ActionConfig, execution.ExecutionData)

	err = executor.Execute(ctx, config, execution.ExecutionData)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	return nil
}

func (s *Scheduler) complete(ctx context.Context, logger *slog.Logger, def *models.WorkflowDefinition, execution *models.WorkflowExecution, startedAt time.Time) error {
	completedAt := s.clock.Now().UTC()

	execution.Status = models.ExecutionCompleted
	execution.CompletedAt = &completedAt

	err := s.executions.Save(ctx, execution)
	if err != nil {
		return fmt.Errorf("failed to mark execution completed: %w", err)
	}

	duration := completedAt.Sub(startedAt)

	s.publish(ctx, execution.ID, events.NewExecutionCompleted(execution.ID, def.ID, duration))
	logger.InfoContext(ctx, "Execution completed", "duration", duration)

	return nil
}

func (s *Scheduler) fail(
	ctx context.Context,
	span trace.Span,
	logger *slog.Logger,
	def *models.WorkflowDefinition,
	execution *models.WorkflowExecution,
	index int,
	action models.ActionSpec,
	actionErr error,
) error {
	failedAt := s.clock.Now().UTC()

	wrapped := fmt.Errorf("action %d (%s): %w", index, action.ActionType, actionErr)

	// ErrorMessage records the executor's own message; the positional context
	// lives only in the returned error and the logs.
	execution.Status = models.ExecutionFailed
	execution.ErrorMessage = actionErr.Error()
	execution.CompletedAt = &failedAt

	err := s.executions.Save(ctx, execution)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist failed execution", "error", err)
	}

	var duration time.Duration
	if execution.StartedAt != nil {
		duration = failedAt.Sub(*execution.StartedAt)
	}

	otelhelper.SetError(span, wrapped)
	s.publish(ctx, execution.ID, events.NewExecutionFailed(execution.ID, def.ID, wrapped.Error(), duration))
	logger.ErrorContext(ctx, "Execution failed",
		"action_index", index,
		"action_type", action.ActionType,
		"error", actionErr,
	)

	return wrapped
}

// publish sends a lifecycle notification. Bus failures never affect the
// execution outcome.
func (s *Scheduler) publish(ctx context.Context, key string, event eventbus.Event) {
	err := s.publisher.Publish(ctx, key, event)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
