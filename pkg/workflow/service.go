package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewline/automation/pkg/eventbus"
	"github.com/crewline/automation/pkg/events"
	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
	"github.com/crewline/automation/pkg/registry"
)

// Service is the entry point the rest of the suite talks to. Trigger methods
// enqueue the event on the bus and return immediately; matching and execution
// happen on the dispatcher side. Automation failures never surface to the CRUD
// mutation path that raised the trigger.
type Service struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	registry    *registry.Registry
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewService(
	p persistence.Persistence,
	publisher eventbus.EventPublisher,
	reg *registry.Registry,
	logger *slog.Logger,
) *Service {
	return &Service{
		persistence: p,
		publisher:   publisher,
		registry:    reg,
		validator:   validator.New(),
		logger:      logger.With("module", "workflow_service"),
	}
}

// TriggerRecordCreated enqueues a record_created event.
func (s *Service) TriggerRecordCreated(ctx context.Context, module, recordID string, record map[string]any) {
	s.enqueue(ctx, models.NewTriggerEvent(models.TriggerRecordCreated, module, recordID, record))
}

// TriggerRecordUpdated enqueues a record_updated event carrying the pre-update
// snapshot under previous_data.
func (s *Service) TriggerRecordUpdated(ctx context.Context, module, recordID string, record, previous map[string]any) {
	event := models.NewTriggerEvent(models.TriggerRecordUpdated, module, recordID, record).
		WithPreviousData(previous)

	s.enqueue(ctx, event)
}

// TriggerFieldChanged enqueues a field_changed event. The changed field name
// and values ride in the event data so conditions can target them.
func (s *Service) TriggerFieldChanged(ctx context.Context, module, recordID, field string, oldValue, newValue any, record map[string]any) {
	event := models.NewTriggerEvent(models.TriggerFieldChanged, module, recordID, record)
	event.Data["changed_field"] = field
	event.Data["old_value"] = oldValue
	event.Data["new_value"] = newValue

	s.enqueue(ctx, event)
}

// TriggerFormSubmitted enqueues a form_submitted event for the record the
// submission created.
func (s *Service) TriggerFormSubmitted(ctx context.Context, module, recordID string, submission map[string]any) {
	s.enqueue(ctx, models.NewTriggerEvent(models.TriggerFormSubmitted, module, recordID, submission))
}

// enqueue publishes the trigger event. Publish failures are logged and
// swallowed: the caller's own mutation already succeeded.
func (s *Service) enqueue(ctx context.Context, event models.TriggerEvent) {
	err := s.publisher.Publish(ctx, event.RecordID, events.NewRecordEventReceived(event))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue trigger event",
			"trigger_type", event.Type,
			"record_module", event.Module,
			"record_id", event.RecordID,
			"error", err,
		)

		return
	}

	s.logger.DebugContext(ctx, "Trigger event enqueued",
		"trigger_type", event.Type,
		"record_module", event.Module,
		"record_id", event.RecordID,
	)
}

// CreateDefinition validates and stores a new workflow definition.
func (s *Service) CreateDefinition(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if def.ID == "" {
		def.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	err := s.validateDefinition(def)
	if err != nil {
		return nil, err
	}

	err = s.persistence.Definitions().Save(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow definition: %w", err)
	}

	s.logger.InfoContext(ctx, "Workflow definition created", "workflow_id", def.ID, "name", def.Name)

	return def, nil
}

// UpdateDefinition validates and overwrites an existing definition. In-flight
// executions keep the definition snapshot they started with.
func (s *Service) UpdateDefinition(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	existing, err := s.persistence.Definitions().GetByID(ctx, def.ID)
	if err != nil {
		return nil, err
	}

	def.CreatedAt = existing.CreatedAt
	def.UpdatedAt = time.Now().UTC()

	err = s.validateDefinition(def)
	if err != nil {
		return nil, err
	}

	err = s.persistence.Definitions().Save(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow definition: %w", err)
	}

	return def, nil
}

func (s *Service) DeleteDefinition(ctx context.Context, id string) error {
	return s.persistence.Definitions().Delete(ctx, id)
}

func (s *Service) GetDefinition(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return s.persistence.Definitions().GetByID(ctx, id)
}

func (s *Service) ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return s.persistence.Definitions().All(ctx)
}

func (s *Service) GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	return s.persistence.Executions().GetByID(ctx, id)
}

func (s *Service) ListExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	return s.persistence.Executions().ListByWorkflow(ctx, workflowID)
}

func (s *Service) HealthCheck(ctx context.Context) error {
	return s.persistence.HealthCheck(ctx)
}

// validateDefinition checks struct constraints plus per-action config schemas
// and execution order uniqueness.
func (s *Service) validateDefinition(def *models.WorkflowDefinition) error {
	err := s.validator.Struct(def)
	if err != nil {
		return fmt.Errorf("invalid workflow definition: %w", err)
	}

	seenOrders := make(map[int]bool, len(def.Actions))

	for _, action := range def.Actions {
		if seenOrders[action.ExecutionOrder] {
			return fmt.Errorf("duplicate execution order %d in workflow %s", action.ExecutionOrder, def.ID)
		}

		seenOrders[action.ExecutionOrder] = true

		err := s.registry.ValidateConfig(string(action.ActionType), action.ActionConfig)
		if err != nil {
			return fmt.Errorf("invalid action config: %w", err)
		}
	}

	return nil
}
