package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the lifecycle state of a workflow execution.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// IsTerminal reports whether the status is completed or failed. Executions are
// never mutated again once terminal.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed
}

// WorkflowExecution is one run of one workflow definition against one trigger
// event. It is owned exclusively by the scheduler pipeline that created it.
type WorkflowExecution struct {
	ID              string `json:"id"`
	WorkflowID      string `json:"workflow_id"`
	TriggerRecordID string `json:"trigger_record_id"`
	TriggerModule   string `json:"trigger_module"`

	Status ExecutionStatus `json:"status"`

	// ExecutionData is the trigger data snapshot frozen at match time. Record
	// mutations after the match never affect an in-flight execution.
	ExecutionData map[string]any `json:"execution_data"`

	// NextActionIndex is the position in the ordered action list the scheduler
	// will run next. Checkpointed after every action so a restarted process can
	// resume instead of abandoning the execution.
	NextActionIndex int `json:"next_action_index"`

	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewWorkflowExecution creates a pending execution for the given definition
// and trigger event, freezing a copy of the event data.
func NewWorkflowExecution(def *WorkflowDefinition, event TriggerEvent, now time.Time) *WorkflowExecution {
	frozen := make(map[string]any, len(event.Data))
	for k, v := range event.Data {
		frozen[k] = v
	}

	return &WorkflowExecution{
		ID:              "exec-" + uuid.New().String(),
		WorkflowID:      def.ID,
		TriggerRecordID: event.RecordID,
		TriggerModule:   event.Module,
		Status:          ExecutionPending,
		ExecutionData:   frozen,
		CreatedAt:       now,
	}
}
