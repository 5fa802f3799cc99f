// Package addtag attaches a tag to the triggering record.
package addtag

import (
	"context"
	"fmt"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"tag": {"type": "string", "minLength": 1}
	},
	"required": ["tag"]
}`

type Executor struct {
	tags protocol.TagStore
}

func NewExecutor(tags protocol.TagStore) *Executor {
	return &Executor{tags: tags}
}

func (e *Executor) ID() string           { return "add_tag" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	tag := template.GetString(config, "tag", data)
	if tag == "" {
		return fmt.Errorf("add_tag requires a tag")
	}

	module := template.Stringify(data["entity_type"])
	recordID := template.Stringify(data["id"])

	err := e.tags.AddTag(ctx, module, recordID, tag)
	if err != nil {
		return fmt.Errorf("failed to tag %s/%s with %q: %w", module, recordID, tag, err)
	}

	return nil
}
