// Package cmd provides common initialization for the command-line entrypoint.
package cmd

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/crewline/automation/pkg/actions/addtag"
	"github.com/crewline/automation/pkg/actions/assign"
	"github.com/crewline/automation/pkg/actions/createnote"
	"github.com/crewline/automation/pkg/actions/createtask"
	"github.com/crewline/automation/pkg/actions/sendemail"
	"github.com/crewline/automation/pkg/actions/updatefield"
	"github.com/crewline/automation/pkg/actions/webhook"
	"github.com/crewline/automation/pkg/registry"
)

// NewRegistry registers the built-in action executors against the given
// collaborators.
func NewRegistry(logger *slog.Logger, collaborators *Collaborators) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(sendemail.NewExecutor(collaborators.Mailer, collaborators.Directory))
	reg.Register(createtask.NewExecutor(collaborators.Tasks, clockwork.NewRealClock()))
	reg.Register(createnote.NewExecutor(collaborators.Notes))
	reg.Register(updatefield.NewExecutor(collaborators.Records))
	reg.Register(assign.NewExecutor(
		collaborators.Records,
		assign.NewRoundRobinStrategy(),
		assign.NewRecordOwnerStrategy(),
		assign.NewSpecificUserStrategy(),
	))
	reg.Register(addtag.NewExecutor(collaborators.Tags))
	reg.Register(webhook.NewExecutor())

	return reg
}
