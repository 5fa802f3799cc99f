// Package persistence provides the storage abstraction for workflow
// definitions and executions.
package persistence

import (
	"context"

	"github.com/crewline/automation/pkg/models"
)

// DefinitionRepository reads and writes workflow definitions. Definitions are
// authored externally; the engine's execution path only reads them.
type DefinitionRepository interface {
	Save(ctx context.Context, def *models.WorkflowDefinition) error
	GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	All(ctx context.Context) ([]*models.WorkflowDefinition, error)
	Delete(ctx context.Context, id string) error

	// ActiveForTrigger returns active definitions whose trigger type matches
	// and whose trigger module equals the given module or is null, ordered by
	// creation time ascending. Earlier-authored workflows run first.
	ActiveForTrigger(ctx context.Context, triggerType models.TriggerType, module string) ([]*models.WorkflowDefinition, error)

	// ActiveTimeBased returns every active time_based definition, for the cron
	// source.
	ActiveTimeBased(ctx context.Context) ([]*models.WorkflowDefinition, error)
}

// ExecutionRepository stores workflow executions. Only the scheduler pipeline
// that owns an execution ever writes it.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error)

	// ListByStatus is used on startup to find pending/running executions a
	// crashed process left behind.
	ListByStatus(ctx context.Context, status models.ExecutionStatus) ([]*models.WorkflowExecution, error)
}

type Persistence interface {
	Definitions() DefinitionRepository
	Executions() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
