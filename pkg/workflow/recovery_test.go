package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/workflow"
)

func TestRecovery_ResumesRunningExecutionFromCheckpoint(t *testing.T) {
	t.Parallel()

	noteExec := newExecutor(models.ActionCreateNote)
	tagExec := newExecutor(models.ActionAddTag)
	h := newHarness(t, noteExec, tagExec)

	tagExec.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	def := definitionWithActions(
		models.ActionSpec{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
		models.ActionSpec{ID: "a2", ActionType: models.ActionAddTag, ActionConfig: map[string]any{"tag": "hot"}, ExecutionOrder: 1},
	)
	require.NoError(t, h.persistence.Definitions().Save(context.Background(), def))

	execution := pendingExecution(def, map[string]any{})
	startedAt := time.Now().UTC()
	execution.Status = models.ExecutionRunning
	execution.StartedAt = &startedAt
	execution.NextActionIndex = 1
	require.NoError(t, h.persistence.Executions().Save(context.Background(), execution))

	recovery := workflow.NewRecovery(h.persistence, h.scheduler, testLogger())
	require.NoError(t, recovery.Resume(context.Background()))

	noteExec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	tagExec.AssertExpectations(t)

	loaded, err := h.persistence.Executions().GetByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCompleted, loaded.Status)
}

func TestRecovery_RunsPendingExecutions(t *testing.T) {
	t.Parallel()

	noteExec := newExecutor(models.ActionCreateNote)
	h := newHarness(t, noteExec)

	noteExec.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	def := definitionWithActions(
		models.ActionSpec{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
	)
	require.NoError(t, h.persistence.Definitions().Save(context.Background(), def))

	execution := pendingExecution(def, map[string]any{})
	require.NoError(t, h.persistence.Executions().Save(context.Background(), execution))

	recovery := workflow.NewRecovery(h.persistence, h.scheduler, testLogger())
	require.NoError(t, recovery.Resume(context.Background()))

	loaded, err := h.persistence.Executions().GetByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCompleted, loaded.Status)
}

func TestRecovery_AbandonsExecutionWithoutDefinition(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	def := definitionWithActions(
		models.ActionSpec{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
	)

	// The definition is never saved, as if deleted mid-flight.
	execution := pendingExecution(def, map[string]any{})
	require.NoError(t, h.persistence.Executions().Save(context.Background(), execution))

	recovery := workflow.NewRecovery(h.persistence, h.scheduler, testLogger())
	require.NoError(t, recovery.Resume(context.Background()))

	loaded, err := h.persistence.Executions().GetByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionFailed, loaded.Status)
	assert.Contains(t, loaded.ErrorMessage, "no longer exists")
}

func TestRecovery_LeavesTerminalExecutionsAlone(t *testing.T) {
	t.Parallel()

	noteExec := newExecutor(models.ActionCreateNote)
	h := newHarness(t, noteExec)

	def := definitionWithActions(
		models.ActionSpec{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
	)
	require.NoError(t, h.persistence.Definitions().Save(context.Background(), def))

	execution := pendingExecution(def, map[string]any{})
	now := time.Now().UTC()
	execution.Status = models.ExecutionCompleted
	execution.CompletedAt = &now
	require.NoError(t, h.persistence.Executions().Save(context.Background(), execution))

	recovery := workflow.NewRecovery(h.persistence, h.scheduler, testLogger())
	require.NoError(t, recovery.Resume(context.Background()))

	noteExec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}
