// Package models defines the core domain models for the Crewline automation engine.
package models

import (
	"sort"
	"time"
)

// TriggerType identifies the record lifecycle event a workflow reacts to.
type TriggerType string

const (
	TriggerRecordCreated TriggerType = "record_created"
	TriggerRecordUpdated TriggerType = "record_updated"
	TriggerFieldChanged  TriggerType = "field_changed"
	TriggerTimeBased     TriggerType = "time_based"
	TriggerFormSubmitted TriggerType = "form_submitted"
)

// TriggerTypes lists every trigger type the engine accepts, in no particular order.
var TriggerTypes = []TriggerType{
	TriggerRecordCreated,
	TriggerRecordUpdated,
	TriggerFieldChanged,
	TriggerTimeBased,
	TriggerFormSubmitted,
}

// ActionType identifies one of the built-in action kinds.
type ActionType string

const (
	ActionSendEmail    ActionType = "send_email"
	ActionCreateTask   ActionType = "create_task"
	ActionCreateNote   ActionType = "create_note"
	ActionUpdateField  ActionType = "update_field"
	ActionAssignToUser ActionType = "assign_to_user"
	ActionAddTag       ActionType = "add_tag"
	ActionWebhook      ActionType = "webhook"
)

// WorkflowDefinition is a stored automation rule: a trigger, a condition list
// and an ordered action list. Definitions are authored by the external workflow
// builder; the engine only ever reads them.
type WorkflowDefinition struct {
	ID       string `json:"id"`
	Name     string `json:"name"      validate:"required,min=3"`
	IsActive bool   `json:"is_active"`

	TriggerType TriggerType `json:"trigger_type" validate:"required"`
	// TriggerModule is the business module the workflow listens on. Nil means
	// the workflow matches events from any module.
	TriggerModule *string `json:"trigger_module,omitempty"`
	// TriggerConfig carries trigger-type specific settings, e.g. the cron
	// expression for time_based workflows.
	TriggerConfig     map[string]any `json:"trigger_config,omitempty"`
	TriggerConditions []Condition    `json:"trigger_conditions,omitempty"`

	Actions []ActionSpec `json:"actions" validate:"dive"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActionSpec is one step of a workflow's ordered action list.
type ActionSpec struct {
	ID         string     `json:"id"`
	ActionType ActionType `json:"action_type" validate:"required"`
	// ActionConfig is the action-specific configuration. String values may
	// contain {{field}} placeholders resolved against the trigger data.
	ActionConfig map[string]any `json:"action_config"`
	// ExecutionOrder values are unique within a definition; ascending order is
	// execution order.
	ExecutionOrder int `json:"execution_order"`
	// DelayMinutes is applied before this action runs, measured from the
	// completion of the previous action in the sequence.
	DelayMinutes int `json:"delay_minutes" validate:"min=0"`
}

// OrderedActions returns the actions sorted by ExecutionOrder ascending.
func (w *WorkflowDefinition) OrderedActions() []ActionSpec {
	actions := make([]ActionSpec, len(w.Actions))
	copy(actions, w.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].ExecutionOrder < actions[j].ExecutionOrder
	})

	return actions
}

// MatchesModule reports whether the definition listens on the given module.
func (w *WorkflowDefinition) MatchesModule(module string) bool {
	return w.TriggerModule == nil || *w.TriggerModule == module
}
