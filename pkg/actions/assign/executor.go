// Package assign resolves an assignee through a pluggable strategy and writes
// it onto the triggering record's assigned_to field.
package assign

import (
	"context"
	"fmt"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"assignee_type": {
			"type": "string",
			"enum": ["round_robin", "record_owner", "specific_user"]
		},
		"user_id": {"type": "string"},
		"user_ids": {
			"type": "array",
			"items": {"type": "string"},
			"minItems": 1
		}
	},
	"required": ["assignee_type"]
}`

type Executor struct {
	records    protocol.RecordStore
	strategies map[string]protocol.AssigneeStrategy
}

func NewExecutor(records protocol.RecordStore, strategies ...protocol.AssigneeStrategy) *Executor {
	byID := make(map[string]protocol.AssigneeStrategy, len(strategies))
	for _, strategy := range strategies {
		byID[strategy.ID()] = strategy
	}

	return &Executor{records: records, strategies: byID}
}

func (e *Executor) ID() string           { return "assign_to_user" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	assigneeType, _ := config["assignee_type"].(string)

	strategy, ok := e.strategies[assigneeType]
	if !ok {
		return fmt.Errorf("unknown assignee_type %q", assigneeType)
	}

	userID, err := strategy.Resolve(ctx, config, data)
	if err != nil {
		return fmt.Errorf("failed to resolve assignee: %w", err)
	}

	module := template.Stringify(data["entity_type"])
	recordID := template.Stringify(data["id"])

	err = e.records.UpdateField(ctx, module, recordID, "assigned_to", userID)
	if err != nil {
		return fmt.Errorf("failed to assign %s to user %s: %w", recordID, userID, err)
	}

	return nil
}
