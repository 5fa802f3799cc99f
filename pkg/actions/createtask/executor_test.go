package createtask_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/actions/createtask"
	"github.com/crewline/automation/pkg/mocks"
	"github.com/crewline/automation/pkg/protocol"
)

func TestExecute_CreatesTaskWithDueDate(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	tasks := &mocks.MockTaskStore{}
	executor := createtask.NewExecutor(tasks, clock)

	tasks.On("CreateTask", mock.Anything, protocol.Task{
		Title:         "Follow up with Ann",
		Description:   "Service: Plumbing",
		Status:        "not_started",
		DueDate:       clock.Now().Add(3 * 24 * time.Hour),
		RelatedModule: "leads",
		RelatedID:     "lead-1",
	}).Return(nil)

	config := map[string]any{
		"title":       "Follow up with Ann",
		"description": "Service: Plumbing",
		"due_in_days": 3.0,
	}
	data := map[string]any{"entity_type": "leads", "id": "lead-1"}

	err := executor.Execute(context.Background(), config, data)
	require.NoError(t, err)
	tasks.AssertExpectations(t)
}

func TestExecute_DueDateDefaultsToTomorrow(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	tasks := &mocks.MockTaskStore{}
	executor := createtask.NewExecutor(tasks, clock)

	tasks.On("CreateTask", mock.Anything, mock.MatchedBy(func(task protocol.Task) bool {
		return task.DueDate.Equal(clock.Now().Add(24 * time.Hour))
	})).Return(nil)

	err := executor.Execute(context.Background(),
		map[string]any{"title": "Call back"},
		map[string]any{"entity_type": "leads", "id": "lead-2"})
	require.NoError(t, err)
	tasks.AssertExpectations(t)
}

func TestExecute_MissingTitleFails(t *testing.T) {
	t.Parallel()

	tasks := &mocks.MockTaskStore{}
	executor := createtask.NewExecutor(tasks, clockwork.NewFakeClock())

	err := executor.Execute(context.Background(), map[string]any{}, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a title")
	tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}
