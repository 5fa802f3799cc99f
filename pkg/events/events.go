// Package events defines the messages exchanged on the automation event bus.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/crewline/automation/pkg/models"
)

type EventType string

// Topic is the bus topic all automation events travel on.
const Topic = "crewline.automation.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// RecordEventReceivedType is published by the façade for every inbound
	// trigger event; the dispatcher consumes it.
	RecordEventReceivedType EventType = "automation.record_event"

	// Execution lifecycle notifications for observability consumers.
	ExecutionStartedType   EventType = "automation.execution.started"
	ExecutionCompletedType EventType = "automation.execution.completed"
	ExecutionFailedType    EventType = "automation.execution.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// RecordEventReceived wraps a trigger event for transport between the façade
// and the dispatcher.
type RecordEventReceived struct {
	BaseEvent

	Event models.TriggerEvent `json:"event"`
}

func (e RecordEventReceived) GetType() EventType {
	return RecordEventReceivedType
}

func NewRecordEventReceived(event models.TriggerEvent) RecordEventReceived {
	return RecordEventReceived{
		BaseEvent: NewBaseEvent(RecordEventReceivedType),
		Event:     event,
	}
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedType
}

func NewExecutionStarted(executionID, workflowID string) ExecutionStarted {
	return ExecutionStarted{
		BaseEvent:   NewBaseEvent(ExecutionStartedType),
		ExecutionID: executionID,
		WorkflowID:  workflowID,
	}
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedType
}

func NewExecutionCompleted(executionID, workflowID string, duration time.Duration) ExecutionCompleted {
	return ExecutionCompleted{
		BaseEvent:   NewBaseEvent(ExecutionCompletedType),
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		Duration:    duration,
	}
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedType
}

func NewExecutionFailed(executionID, workflowID, errorMessage string, duration time.Duration) ExecutionFailed {
	return ExecutionFailed{
		BaseEvent:   NewBaseEvent(ExecutionFailedType),
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		Error:       errorMessage,
		Duration:    duration,
	}
}
