package cmd

import (
	"fmt"
	"log/slog"

	"github.com/crewline/automation/pkg/collaborators/crmapi"
	"github.com/crewline/automation/pkg/collaborators/redismail"
	"github.com/crewline/automation/pkg/protocol"
)

// Collaborators bundles the external services the action executors write to.
type Collaborators struct {
	Mailer    protocol.Mailer
	Tasks     protocol.TaskStore
	Notes     protocol.NoteStore
	Records   protocol.RecordStore
	Tags      protocol.TagStore
	Directory protocol.UserDirectory
}

// NewCollaborators wires the production collaborators: the suite's record API
// for tasks, notes, records, tags and user lookup, Redis for outbound mail.
func NewCollaborators(logger *slog.Logger, apiBaseURL, apiToken, redisURL string) (*Collaborators, error) {
	mailer, err := redismail.NewMailer(logger, redisURL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail collaborator: %w", err)
	}

	api := crmapi.NewClient(logger, apiBaseURL, apiToken)

	return &Collaborators{
		Mailer:    mailer,
		Tasks:     api,
		Notes:     api,
		Records:   api,
		Tags:      api,
		Directory: api,
	}, nil
}
