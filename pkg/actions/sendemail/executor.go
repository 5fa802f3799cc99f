// Package sendemail enqueues outbound mail for the triggering record.
package sendemail

import (
	"context"
	"fmt"

	"github.com/crewline/automation/pkg/protocol"
	"github.com/crewline/automation/pkg/template"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"subject": {"type": "string"},
		"body": {"type": "string"},
		"recipient_type": {
			"type": "string",
			"enum": ["record_email", "record_owner", "assignee", "specific_user"]
		},
		"user_id": {"type": "string"}
	},
	"required": ["subject", "recipient_type"]
}`

type Executor struct {
	mailer    protocol.Mailer
	directory protocol.UserDirectory
}

func NewExecutor(mailer protocol.Mailer, directory protocol.UserDirectory) *Executor {
	return &Executor{mailer: mailer, directory: directory}
}

func (e *Executor) ID() string           { return "send_email" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	to, err := e.resolveRecipient(ctx, config, data)
	if err != nil {
		return err
	}

	email := protocol.OutboundEmail{
		To:         to,
		Subject:    template.GetString(config, "subject", data),
		Body:       template.GetString(config, "body", data),
		EntityType: template.Stringify(data["entity_type"]),
		EntityID:   template.Stringify(data["id"]),
	}

	err = e.mailer.Enqueue(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to enqueue email to %s: %w", to, err)
	}

	return nil
}

// resolveRecipient turns the configured recipient_type into a concrete
// address, looking record owners and specific users up in the directory.
func (e *Executor) resolveRecipient(ctx context.Context, config map[string]any, data map[string]any) (string, error) {
	recipientType, _ := config["recipient_type"].(string)

	switch recipientType {
	case "record_email", "":
		to := template.Stringify(data["email"])
		if to == "" {
			return "", fmt.Errorf("trigger record has no email field")
		}

		return to, nil
	case "record_owner":
		return e.lookup(ctx, template.Stringify(data["owner_id"]), "record has no owner_id")
	case "assignee":
		return e.lookup(ctx, template.Stringify(data["assigned_to"]), "record has no assigned_to")
	case "specific_user":
		userID, _ := config["user_id"].(string)

		return e.lookup(ctx, userID, "specific_user recipient requires user_id")
	default:
		return "", fmt.Errorf("unknown recipient_type %q", recipientType)
	}
}

func (e *Executor) lookup(ctx context.Context, userID, missingMsg string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%s", missingMsg)
	}

	email, err := e.directory.EmailByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve email for user %s: %w", userID, err)
	}

	return email, nil
}
