// Package web exposes the engine's HTTP surface: trigger event ingestion,
// definition authoring and execution inspection.
package web

import "github.com/crewline/automation/pkg/models"

// TriggerEventRequest is the body for POST /v1/events. CRUD services in the
// rest of the suite post here when they cannot link the engine in-process.
type TriggerEventRequest struct {
	Type     models.TriggerType `json:"type"      validate:"required,oneof=record_created record_updated field_changed form_submitted"`
	Module   string             `json:"module"    validate:"required"`
	RecordID string             `json:"record_id" validate:"required"`
	Data     map[string]any     `json:"data"`
	// PreviousData is honored for record_updated events only.
	PreviousData map[string]any `json:"previous_data,omitempty"`
}

// CreateDefinitionRequest is the body for POST /v1/workflows.
type CreateDefinitionRequest struct {
	Name              string             `json:"name"               validate:"required,min=3"`
	IsActive          bool               `json:"is_active"`
	TriggerType       models.TriggerType `json:"trigger_type"       validate:"required"`
	TriggerModule     *string            `json:"trigger_module,omitempty"`
	TriggerConfig     map[string]any     `json:"trigger_config,omitempty"`
	TriggerConditions []models.Condition `json:"trigger_conditions,omitempty"`
	Actions           []models.ActionSpec `json:"actions"           validate:"required,min=1,dive"`
}

// UpdateDefinitionRequest is the body for PUT /v1/workflows/:id. The full
// definition is replaced; the builder UI always sends the complete document.
type UpdateDefinitionRequest struct {
	Name              string             `json:"name"               validate:"required,min=3"`
	IsActive          bool               `json:"is_active"`
	TriggerType       models.TriggerType `json:"trigger_type"       validate:"required"`
	TriggerModule     *string            `json:"trigger_module,omitempty"`
	TriggerConfig     map[string]any     `json:"trigger_config,omitempty"`
	TriggerConditions []models.Condition `json:"trigger_conditions,omitempty"`
	Actions           []models.ActionSpec `json:"actions"           validate:"required,min=1,dive"`
}
