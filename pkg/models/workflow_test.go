package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/models"
)

func TestOrderedActions_SortsByExecutionOrder(t *testing.T) {
	t.Parallel()

	def := &models.WorkflowDefinition{
		Actions: []models.ActionSpec{
			{ID: "c", ActionType: models.ActionAddTag, ExecutionOrder: 2},
			{ID: "a", ActionType: models.ActionCreateNote, ExecutionOrder: 0},
			{ID: "b", ActionType: models.ActionCreateTask, ExecutionOrder: 1},
		},
	}

	ordered := def.OrderedActions()

	require.Len(t, ordered, 3)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", ordered[1].ID)
	assert.Equal(t, "c", ordered[2].ID)

	// The definition's own slice keeps its declaration order.
	assert.Equal(t, "c", def.Actions[0].ID)
}

func TestMatchesModule(t *testing.T) {
	t.Parallel()

	leads := "leads"

	tests := []struct {
		name    string
		trigger *string
		module  string
		want    bool
	}{
		{name: "nil module matches anything", trigger: nil, module: "contacts", want: true},
		{name: "same module matches", trigger: &leads, module: "leads", want: true},
		{name: "other module does not match", trigger: &leads, module: "contacts", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := &models.WorkflowDefinition{TriggerModule: tt.trigger}
			assert.Equal(t, tt.want, def.MatchesModule(tt.module))
		})
	}
}

func TestExecutionStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, models.ExecutionPending.IsTerminal())
	assert.False(t, models.ExecutionRunning.IsTerminal())
	assert.True(t, models.ExecutionCompleted.IsTerminal())
	assert.True(t, models.ExecutionFailed.IsTerminal())
}

func TestNewWorkflowExecution_FreezesEventData(t *testing.T) {
	t.Parallel()

	def := &models.WorkflowDefinition{ID: "wf-1"}
	record := map[string]any{"name": "Sam"}
	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-1", record)

	now := time.Now().UTC()
	execution := models.NewWorkflowExecution(def, event, now)

	assert.Equal(t, "wf-1", execution.WorkflowID)
	assert.Equal(t, "lead-1", execution.TriggerRecordID)
	assert.Equal(t, "leads", execution.TriggerModule)
	assert.Equal(t, models.ExecutionPending, execution.Status)
	assert.Equal(t, 0, execution.NextActionIndex)
	assert.Equal(t, now, execution.CreatedAt)

	event.Data["name"] = "changed"
	assert.Equal(t, "Sam", execution.ExecutionData["name"])
}

func TestNewTriggerEvent_MergesSyntheticKeys(t *testing.T) {
	t.Parallel()

	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-9", map[string]any{"source": "web_form"})

	assert.Equal(t, "leads", event.Data["entity_type"])
	assert.Equal(t, "lead-9", event.Data["id"])
	assert.Equal(t, "web_form", event.Data["source"])
}

func TestWithPreviousData_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := models.NewTriggerEvent(models.TriggerRecordUpdated, "leads", "lead-2", map[string]any{"status": "contacted"})

	updated := original.WithPreviousData(map[string]any{"status": "new"})

	require.Contains(t, updated.Data, "previous_data")
	assert.NotContains(t, original.Data, "previous_data")

	previous, ok := updated.Data["previous_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new", previous["status"])
}
