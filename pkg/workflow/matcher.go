// Package workflow contains the matching and scheduling pipeline that turns
// trigger events into executed workflow runs.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewline/automation/pkg/conditions"
	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

// Matcher finds the workflow definitions a trigger event should run and
// creates a pending execution for each match.
type Matcher struct {
	definitions persistence.DefinitionRepository
	executions  persistence.ExecutionRepository
	logger      *slog.Logger
}

func NewMatcher(p persistence.Persistence, logger *slog.Logger) *Matcher {
	return &Matcher{
		definitions: p.Definitions(),
		executions:  p.Executions(),
		logger:      logger.With("module", "matcher"),
	}
}

// Match evaluates the event against every active definition listening on its
// trigger type and module. Each match gets its own pending execution with a
// frozen copy of the event data; an event matching N definitions yields N
// executions, and the same event delivered twice yields executions twice.
func (m *Matcher) Match(ctx context.Context, event models.TriggerEvent) ([]*models.WorkflowExecution, error) {
	candidates, err := m.definitions.ActiveForTrigger(ctx, event.Type, event.Module)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate definitions: %w", err)
	}

	executions := make([]*models.WorkflowExecution, 0, len(candidates))

	// A scheduled tick belongs to the workflow whose cron expression fired;
	// other time_based definitions sharing the module must not piggyback.
	targetWorkflow, _ := event.Data["workflow_id"].(string)

	for _, def := range candidates {
		if event.Type == models.TriggerTimeBased && targetWorkflow != "" && def.ID != targetWorkflow {
			continue
		}
		if !conditions.Evaluate(def.TriggerConditions, event.Data) {
			m.logger.DebugContext(ctx, "Trigger conditions not met",
				"workflow_id", def.ID,
				"record_id", event.RecordID,
			)

			continue
		}

		execution := models.NewWorkflowExecution(def, event, time.Now().UTC())

		err := m.executions.Save(ctx, execution)
		if err != nil {
			return nil, fmt.Errorf("failed to persist execution for workflow %s: %w", def.ID, err)
		}

		m.logger.InfoContext(ctx, "Workflow matched",
			"workflow_id", def.ID,
			"execution_id", execution.ID,
			"record_id", event.RecordID,
		)

		executions = append(executions, execution)
	}

	return executions, nil
}
