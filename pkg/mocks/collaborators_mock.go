// Package mocks provides testify mock implementations of the engine's
// collaborator and persistence interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crewline/automation/pkg/protocol"
)

// MockMailer is a mock implementation of protocol.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Enqueue(ctx context.Context, email protocol.OutboundEmail) error {
	args := m.Called(ctx, email)

	return args.Error(0)
}

// MockTaskStore is a mock implementation of protocol.TaskStore.
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) CreateTask(ctx context.Context, task protocol.Task) error {
	args := m.Called(ctx, task)

	return args.Error(0)
}

// MockNoteStore is a mock implementation of protocol.NoteStore.
type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) CreateNote(ctx context.Context, note protocol.Note) error {
	args := m.Called(ctx, note)

	return args.Error(0)
}

// MockRecordStore is a mock implementation of protocol.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) UpdateField(ctx context.Context, module, recordID, field string, value any) error {
	args := m.Called(ctx, module, recordID, field, value)

	return args.Error(0)
}

// MockTagStore is a mock implementation of protocol.TagStore.
type MockTagStore struct {
	mock.Mock
}

func (m *MockTagStore) AddTag(ctx context.Context, module, recordID, tag string) error {
	args := m.Called(ctx, module, recordID, tag)

	return args.Error(0)
}

// MockUserDirectory is a mock implementation of protocol.UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) EmailByID(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)

	return args.String(0), args.Error(1)
}

// MockExecutor is a mock implementation of protocol.Executor for scheduler
// tests.
type MockExecutor struct {
	mock.Mock

	ExecutorID string
}

func (m *MockExecutor) ID() string {
	if m.ExecutorID != "" {
		return m.ExecutorID
	}

	return "mock"
}

func (m *MockExecutor) ConfigSchema() string { return "" }

func (m *MockExecutor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	args := m.Called(ctx, config, data)

	return args.Error(0)
}
