package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence/file"
	"github.com/crewline/automation/pkg/workflow"
)

func newMatcher(t *testing.T) (*workflow.Matcher, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return workflow.NewMatcher(p, testLogger()), p
}

func saveDefinition(t *testing.T, p *file.Persistence, def *models.WorkflowDefinition) {
	t.Helper()

	require.NoError(t, p.Definitions().Save(context.Background(), def))
}

func leadDefinition(name string, conds []models.Condition) *models.WorkflowDefinition {
	module := "leads"

	return &models.WorkflowDefinition{
		ID:                uuid.New().String(),
		Name:              name,
		IsActive:          true,
		TriggerType:       models.TriggerRecordCreated,
		TriggerModule:     &module,
		TriggerConditions: conds,
		Actions: []models.ActionSpec{
			{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestMatcher_CreatesPendingExecutionPerMatch(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	first := leadDefinition("First", nil)
	second := leadDefinition("Second", nil)
	saveDefinition(t, p, first)
	saveDefinition(t, p, second)

	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-1", map[string]any{"name": "Sam"})

	executions, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, executions, 2, "one execution per matched workflow")

	for _, execution := range executions {
		assert.Equal(t, models.ExecutionPending, execution.Status)
		assert.Equal(t, "lead-1", execution.TriggerRecordID)
		assert.Equal(t, "leads", execution.TriggerModule)
		assert.Equal(t, "Sam", execution.ExecutionData["name"])

		persisted, err := p.Executions().GetByID(context.Background(), execution.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ExecutionPending, persisted.Status)
	}
}

func TestMatcher_SkipsDefinitionsWithUnmetConditions(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	webFormOnly := leadDefinition("Web form leads", []models.Condition{
		{Field: "source", Operator: models.OperatorEquals, Value: "web_form"},
	})
	unconditional := leadDefinition("All leads", nil)
	saveDefinition(t, p, webFormOnly)
	saveDefinition(t, p, unconditional)

	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-2", map[string]any{"source": "referral"})

	executions, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, unconditional.ID, executions[0].WorkflowID)
}

func TestMatcher_FiltersByTriggerTypeAndModule(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	created := leadDefinition("On create", nil)

	updated := leadDefinition("On update", nil)
	updated.TriggerType = models.TriggerRecordUpdated

	contacts := leadDefinition("Contacts only", nil)
	contactsModule := "contacts"
	contacts.TriggerModule = &contactsModule

	inactive := leadDefinition("Disabled", nil)
	inactive.IsActive = false

	anyModule := leadDefinition("Any module", nil)
	anyModule.TriggerModule = nil

	for _, def := range []*models.WorkflowDefinition{created, updated, contacts, inactive, anyModule} {
		saveDefinition(t, p, def)
	}

	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-3", map[string]any{})

	executions, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)

	matchedWorkflows := make([]string, 0, len(executions))
	for _, execution := range executions {
		matchedWorkflows = append(matchedWorkflows, execution.WorkflowID)
	}

	assert.ElementsMatch(t, []string{created.ID, anyModule.ID}, matchedWorkflows)
}

func TestMatcher_SameEventTwiceYieldsTwoExecutions(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	def := leadDefinition("No dedup", nil)
	saveDefinition(t, p, def)

	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-4", map[string]any{})

	first, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)

	second, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestMatcher_ScheduledTickMatchesOnlyItsOwnWorkflow(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	first := leadDefinition("Nightly report", nil)
	first.TriggerType = models.TriggerTimeBased
	first.TriggerModule = nil

	second := leadDefinition("Weekly digest", nil)
	second.TriggerType = models.TriggerTimeBased
	second.TriggerModule = nil

	saveDefinition(t, p, first)
	saveDefinition(t, p, second)

	event := models.NewTriggerEvent(models.TriggerTimeBased, "", first.ID, map[string]any{
		"workflow_id": first.ID,
	})

	executions, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, first.ID, executions[0].WorkflowID)
}

func TestMatcher_FrozenDataIsACopy(t *testing.T) {
	t.Parallel()

	matcher, p := newMatcher(t)

	def := leadDefinition("Snapshot", nil)
	saveDefinition(t, p, def)

	record := map[string]any{"status": "new"}
	event := models.NewTriggerEvent(models.TriggerRecordCreated, "leads", "lead-5", record)

	executions, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, executions, 1)

	record["status"] = "changed"
	event.Data["status"] = "changed"

	assert.Equal(t, "new", executions[0].ExecutionData["status"])
}
