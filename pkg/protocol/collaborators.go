package protocol

import (
	"context"
	"time"
)

// OutboundEmail is the append-only payload handed to the mail collaborator.
// Delivery and retry are the collaborator's concern.
type OutboundEmail struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// Mailer enqueues outbound mail.
type Mailer interface {
	Enqueue(ctx context.Context, email OutboundEmail) error
}

// Task is a work item created in the task collaborator.
type Task struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	DueDate       time.Time `json:"due_date"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	RelatedModule string    `json:"related_module"`
	RelatedID     string    `json:"related_id"`
}

// TaskStore creates tasks against the task collaborator.
type TaskStore interface {
	CreateTask(ctx context.Context, task Task) error
}

// Note is a comment attached to a record.
type Note struct {
	Content       string `json:"content"`
	RelatedModule string `json:"related_module"`
	RelatedID     string `json:"related_id"`
}

// NoteStore creates notes against the notes collaborator.
type NoteStore interface {
	CreateNote(ctx context.Context, note Note) error
}

// RecordStore writes fields onto business records. The record is a shared
// external resource: there is no optimistic-concurrency check, so
// workflow-driven and user-driven writes to the same record can race.
type RecordStore interface {
	UpdateField(ctx context.Context, module, recordID, field string, value any) error
}

// TagStore attaches tags to records.
type TagStore interface {
	AddTag(ctx context.Context, module, recordID, tag string) error
}

// UserDirectory resolves user ids to contact details.
type UserDirectory interface {
	EmailByID(ctx context.Context, userID string) (string, error)
}
