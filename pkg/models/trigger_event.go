package models

// TriggerEvent describes a record mutation that may cause workflows to run.
// It is ephemeral: produced by a CRUD mutation path (or the cron source),
// consumed once by the matcher, never persisted as its own entity.
type TriggerEvent struct {
	Type     TriggerType `json:"type"      validate:"required"`
	Module   string      `json:"module"    validate:"required"`
	RecordID string      `json:"record_id" validate:"required"`
	// Data is the flattened record field values plus the synthetic entity_type
	// and id keys, and previous_data on updates.
	Data map[string]any `json:"data"`
}

// NewTriggerEvent builds an event, merging the synthetic entity_type and id
// keys callers rely on for interpolation.
func NewTriggerEvent(triggerType TriggerType, module, recordID string, record map[string]any) TriggerEvent {
	data := make(map[string]any, len(record)+2)
	for k, v := range record {
		data[k] = v
	}

	data["entity_type"] = module
	data["id"] = recordID

	return TriggerEvent{
		Type:     triggerType,
		Module:   module,
		RecordID: recordID,
		Data:     data,
	}
}

// WithPreviousData attaches the pre-update record snapshot under the
// previous_data key. Used by update paths so conditions and templates can see
// what changed.
func (e TriggerEvent) WithPreviousData(previous map[string]any) TriggerEvent {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}

	data["previous_data"] = previous
	e.Data = data

	return e
}
