// Package updatefield writes a configured value onto a field of the
// triggering record. Unlike the legacy engine, which only logged the intent,
// this executor performs the write for real.
package updatefield

import (
	"context"
	"fmt"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"field_name": {"type": "string", "minLength": 1},
		"field_value": {"type": "string"}
	},
	"required": ["field_name", "field_value"]
}`

type Executor struct {
	records protocol.RecordStore
}

func NewExecutor(records protocol.RecordStore) *Executor {
	return &Executor{records: records}
}

func (e *Executor) ID() string           { return "update_field" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	fieldName, _ := config["field_name"].(string)
	if fieldName == "" {
		return fmt.Errorf("update_field requires field_name")
	}

	module := template.Stringify(data["entity_type"])
	recordID := template.Stringify(data["id"])

	err := e.records.UpdateField(ctx, module, recordID, fieldName, config["field_value"])
	if err != nil {
		return fmt.Errorf("failed to update %s.%s on %s: %w", module, fieldName, recordID, err)
	}

	return nil
}
