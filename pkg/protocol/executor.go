// Package protocol defines the capability interfaces the engine is wired
// through: action executors and the external collaborators they act on.
package protocol

import "context"

// Executor performs one concrete side effect for one action kind. Config
// arrives already interpolated against the frozen trigger data; data is that
// frozen snapshot. Executors are invoked at least once per action, so their
// side effects should be idempotent where the collaborator allows it.
type Executor interface {
	// ID returns the action-kind tag the executor is registered under.
	ID() string
	// ConfigSchema returns the JSON schema authored configs are validated
	// against, or "" when the executor accepts anything.
	ConfigSchema() string
	Execute(ctx context.Context, config map[string]any, data map[string]any) error
}

// AssigneeStrategy resolves which user an assign_to_user action should pick.
type AssigneeStrategy interface {
	// ID returns the assignee_type tag the strategy handles.
	ID() string
	Resolve(ctx context.Context, config map[string]any, data map[string]any) (string, error)
}
