package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

// Recovery resumes executions a previous process left behind. Pending
// executions start from the top; running ones continue from their
// NextActionIndex checkpoint, so already completed actions do not repeat.
type Recovery struct {
	persistence persistence.Persistence
	scheduler   *Scheduler
	logger      *slog.Logger
}

func NewRecovery(p persistence.Persistence, scheduler *Scheduler, logger *slog.Logger) *Recovery {
	return &Recovery{
		persistence: p,
		scheduler:   scheduler,
		logger:      logger.With("module", "recovery"),
	}
}

// Resume runs every pending and running execution to completion, serially.
// Called on startup before the dispatcher begins consuming new events.
func (r *Recovery) Resume(ctx context.Context) error {
	for _, status := range []models.ExecutionStatus{models.ExecutionRunning, models.ExecutionPending} {
		executions, err := r.persistence.Executions().ListByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("failed to list %s executions: %w", status, err)
		}

		for _, execution := range executions {
			r.resumeOne(ctx, execution)
		}
	}

	return nil
}

func (r *Recovery) resumeOne(ctx context.Context, execution *models.WorkflowExecution) {
	logger := r.logger.With("execution_id", execution.ID, "workflow_id", execution.WorkflowID)

	def, err := r.persistence.Definitions().GetByID(ctx, execution.WorkflowID)
	if err != nil {
		if errors.Is(err, persistence.ErrDefinitionNotFound) {
			// Definition deleted while the execution was in flight. Nothing
			// left to run it against.
			r.abandon(ctx, execution, "workflow definition no longer exists")

			return
		}

		logger.ErrorContext(ctx, "Failed to load definition for recovery", "error", err)

		return
	}

	logger.InfoContext(ctx, "Resuming execution", "next_action_index", execution.NextActionIndex)

	err = r.scheduler.Run(ctx, def, execution)
	if err != nil {
		logger.DebugContext(ctx, "Resumed execution finished with error", "error", err)
	}
}

func (r *Recovery) abandon(ctx context.Context, execution *models.WorkflowExecution, reason string) {
	now := r.scheduler.clock.Now().UTC()

	execution.Status = models.ExecutionFailed
	execution.ErrorMessage = reason
	execution.CompletedAt = &now

	err := r.persistence.Executions().Save(ctx, execution)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to abandon orphaned execution",
			"execution_id", execution.ID,
			"error", err,
		)
	}
}
