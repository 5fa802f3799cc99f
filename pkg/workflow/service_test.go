package workflow_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/events"
	"github.com/crewline/automation/pkg/mocks"
	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
	"github.com/crewline/automation/pkg/persistence/file"
	"github.com/crewline/automation/pkg/registry"
	"github.com/crewline/automation/pkg/workflow"
)

func newService(t *testing.T, executors ...*mocks.MockExecutor) (*workflow.Service, *mocks.RecordingPublisher, *file.Persistence) {
	t.Helper()

	logger := testLogger()
	p := file.NewPersistence(t.TempDir())
	publisher := &mocks.RecordingPublisher{}

	reg := registry.NewRegistry(logger)
	for _, executor := range executors {
		reg.Register(executor)
	}

	return workflow.NewService(p, publisher, reg, logger), publisher, p
}

func TestService_TriggerRecordCreatedEnqueuesEvent(t *testing.T) {
	t.Parallel()

	service, publisher, _ := newService(t)

	service.TriggerRecordCreated(context.Background(), "leads", "lead-1", map[string]any{"name": "Sam"})

	published := publisher.Published()
	require.Len(t, published, 1)

	received, ok := published[0].(events.RecordEventReceived)
	require.True(t, ok)
	assert.Equal(t, models.TriggerRecordCreated, received.Event.Type)
	assert.Equal(t, "leads", received.Event.Module)
	assert.Equal(t, "lead-1", received.Event.RecordID)
	assert.Equal(t, "Sam", received.Event.Data["name"])
	assert.Equal(t, "leads", received.Event.Data["entity_type"])
	assert.Equal(t, "lead-1", received.Event.Data["id"])
}

func TestService_TriggerRecordUpdatedCarriesPreviousData(t *testing.T) {
	t.Parallel()

	service, publisher, _ := newService(t)

	service.TriggerRecordUpdated(context.Background(), "deals", "deal-1",
		map[string]any{"stage": "won"},
		map[string]any{"stage": "negotiation"},
	)

	published := publisher.Published()
	require.Len(t, published, 1)

	received, ok := published[0].(events.RecordEventReceived)
	require.True(t, ok)
	assert.Equal(t, models.TriggerRecordUpdated, received.Event.Type)

	previous, ok := received.Event.Data["previous_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "negotiation", previous["stage"])
}

func TestService_TriggerFieldChangedIncludesChangeMetadata(t *testing.T) {
	t.Parallel()

	service, publisher, _ := newService(t)

	service.TriggerFieldChanged(context.Background(), "deals", "deal-2", "stage", "new", "qualified",
		map[string]any{"stage": "qualified"},
	)

	published := publisher.Published()
	require.Len(t, published, 1)

	received, ok := published[0].(events.RecordEventReceived)
	require.True(t, ok)
	assert.Equal(t, models.TriggerFieldChanged, received.Event.Type)
	assert.Equal(t, "stage", received.Event.Data["changed_field"])
	assert.Equal(t, "new", received.Event.Data["old_value"])
	assert.Equal(t, "qualified", received.Event.Data["new_value"])
}

func TestService_TriggerSwallowsPublishFailures(t *testing.T) {
	t.Parallel()

	service, publisher, _ := newService(t)
	publisher.PublishErr = assert.AnError

	// Must not panic or surface the bus failure to the caller.
	service.TriggerRecordCreated(context.Background(), "leads", "lead-9", map[string]any{})
	service.TriggerFormSubmitted(context.Background(), "leads", "lead-9", map[string]any{})
}

func TestService_CreateDefinitionValidatesAndStores(t *testing.T) {
	t.Parallel()

	service, _, p := newService(t, &mocks.MockExecutor{ExecutorID: string(models.ActionCreateNote)})

	module := "leads"
	def := &models.WorkflowDefinition{
		Name:          "Welcome leads",
		IsActive:      true,
		TriggerType:   models.TriggerRecordCreated,
		TriggerModule: &module,
		Actions: []models.ActionSpec{
			{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "hi"}, ExecutionOrder: 0},
		},
	}

	created, err := service.CreateDefinition(context.Background(), def)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := p.Definitions().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome leads", loaded.Name)
}

func TestService_CreateDefinitionRejectsShortName(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	def := &models.WorkflowDefinition{
		Name:        "ab",
		TriggerType: models.TriggerRecordCreated,
	}

	_, err := service.CreateDefinition(context.Background(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid workflow definition")
}

func TestService_CreateDefinitionRejectsDuplicateExecutionOrder(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t, &mocks.MockExecutor{ExecutorID: string(models.ActionCreateNote)})

	def := &models.WorkflowDefinition{
		Name:        "Duplicate orders",
		TriggerType: models.TriggerRecordCreated,
		Actions: []models.ActionSpec{
			{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "x"}, ExecutionOrder: 0},
			{ID: "a2", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "y"}, ExecutionOrder: 0},
		},
	}

	_, err := service.CreateDefinition(context.Background(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate execution order")
}

func TestService_CreateDefinitionRejectsUnknownActionType(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	def := &models.WorkflowDefinition{
		Name:        "Unknown action",
		TriggerType: models.TriggerRecordCreated,
		Actions: []models.ActionSpec{
			{ID: "a1", ActionType: "teleport", ActionConfig: map[string]any{}, ExecutionOrder: 0},
		},
	}

	_, err := service.CreateDefinition(context.Background(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestService_UpdateDefinitionKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t, &mocks.MockExecutor{ExecutorID: string(models.ActionCreateNote)})

	def := &models.WorkflowDefinition{
		Name:        "Original",
		TriggerType: models.TriggerRecordCreated,
		Actions: []models.ActionSpec{
			{ID: "a1", ActionType: models.ActionCreateNote, ActionConfig: map[string]any{"content": "x"}, ExecutionOrder: 0},
		},
	}

	created, err := service.CreateDefinition(context.Background(), def)
	require.NoError(t, err)

	update := *created
	update.Name = "Renamed"

	updated, err := service.UpdateDefinition(context.Background(), &update)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestService_UpdateDefinitionUnknownIDFails(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	def := &models.WorkflowDefinition{
		ID:          uuid.New().String(),
		Name:        "Ghost workflow",
		TriggerType: models.TriggerRecordCreated,
	}

	_, err := service.UpdateDefinition(context.Background(), def)
	require.Error(t, err)
	assert.True(t, persistence.IsDefinitionNotFound(err))
}
