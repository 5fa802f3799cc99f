// Package createnote attaches a note to the triggering record.
package createnote

import (
	"context"
	"fmt"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"content": {"type": "string"}
	},
	"required": ["content"]
}`

type Executor struct {
	notes protocol.NoteStore
}

func NewExecutor(notes protocol.NoteStore) *Executor {
	return &Executor{notes: notes}
}

func (e *Executor) ID() string           { return "create_note" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	content := template.GetString(config, "content", data)
	if content == "" {
		return fmt.Errorf("create_note requires content")
	}

	note := protocol.Note{
		Content:       content,
		RelatedModule: template.Stringify(data["entity_type"]),
		RelatedID:     template.Stringify(data["id"]),
	}

	err := e.notes.CreateNote(ctx, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}
