// Package registry maps action-kind tags to their executor implementations.
// New action kinds plug in here without the scheduler changing.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/crewline/automation/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	executors map[string]protocol.Executor
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		executors: make(map[string]protocol.Executor),
	}
}

// Register adds an executor under its own ID, replacing any previous
// registration for the same action kind.
func (r *Registry) Register(executor protocol.Executor) {
	r.executors[executor.ID()] = executor
	r.logger.Debug("Registered action executor", "action_type", executor.ID())
}

// Executor returns the executor registered for the action kind.
func (r *Registry) Executor(actionType string) (protocol.Executor, error) {
	executor, ok := r.executors[actionType]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered", actionType)
	}

	return executor, nil
}

// ActionTypes returns every registered action kind.
func (r *Registry) ActionTypes() []string {
	types := make([]string, 0, len(r.executors))
	for actionType := range r.executors {
		types = append(types, actionType)
	}

	return types
}

// ValidateConfig checks an authored action config against the executor's JSON
// schema. Called when definitions are saved, not on the execution path.
func (r *Registry) ValidateConfig(actionType string, config map[string]any) error {
	executor, err := r.Executor(actionType)
	if err != nil {
		return err
	}

	schema := executor.ConfigSchema()
	if schema == "" {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate %s config: %w", actionType, err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid %s config: %s", actionType, result.Errors()[0].String())
	}

	return nil
}
