// Package createtask creates a follow-up task linked to the triggering record.
package createtask

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"description": {"type": "string"},
		"due_in_days": {"type": "number", "minimum": 0},
		"assigned_to": {"type": "string"}
	},
	"required": ["title"]
}`

type Executor struct {
	tasks protocol.TaskStore
	clock clockwork.Clock
}

func NewExecutor(tasks protocol.TaskStore, clock clockwork.Clock) *Executor {
	return &Executor{tasks: tasks, clock: clock}
}

func (e *Executor) ID() string           { return "create_task" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	title := template.GetString(config, "title", data)
	if title == "" {
		return fmt.Errorf("create_task requires a title")
	}

	task := protocol.Task{
		Title:         title,
		Description:   template.GetString(config, "description", data),
		Status:        "not_started",
		DueDate:       e.clock.Now().Add(dueIn(config)),
		AssignedTo:    template.GetString(config, "assigned_to", data),
		RelatedModule: template.Stringify(data["entity_type"]),
		RelatedID:     template.Stringify(data["id"]),
	}

	err := e.tasks.CreateTask(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to create task %q: %w", title, err)
	}

	return nil
}

func dueIn(config map[string]any) time.Duration {
	days, ok := config["due_in_days"].(float64)
	if !ok {
		if intDays, isInt := config["due_in_days"].(int); isInt {
			days = float64(intDays)
		}
	}

	if days <= 0 {
		days = 1
	}

	return time.Duration(days*24) * time.Hour
}
