package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

// DefinitionRepository handles workflow definition database operations.
type DefinitionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDefinitionRepository(db *sql.DB, logger *slog.Logger) *DefinitionRepository {
	return &DefinitionRepository{db: db, logger: logger}
}

const definitionColumns = `
	id
  , name
  , is_active
  , trigger_type
  , trigger_module
  , trigger_config
  , trigger_conditions
  , actions
  , created_at
  , updated_at
`

func (r *DefinitionRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	now := time.Now().UTC()

	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}

	def.UpdatedAt = now

	if def.ID == "" {
		def.ID = uuid.New().String()
	}

	triggerConfigJSON, err := json.Marshal(def.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	conditionsJSON, err := json.Marshal(def.TriggerConditions)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(def.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO workflow_definitions
			(id, name, is_active, trigger_type, trigger_module, trigger_config, trigger_conditions, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active,
			trigger_type = EXCLUDED.trigger_type,
			trigger_module = EXCLUDED.trigger_module,
			trigger_config = EXCLUDED.trigger_config,
			trigger_conditions = EXCLUDED.trigger_conditions,
			actions = EXCLUDED.actions,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		def.ID,
		def.Name,
		def.IsActive,
		def.TriggerType,
		def.TriggerModule,
		triggerConfigJSON,
		conditionsJSON,
		actionsJSON,
		def.CreatedAt,
		def.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", def.ID, err)
	}

	return nil
}

func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM workflow_definitions WHERE id = $1`

	def, err := r.scanDefinition(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrDefinitionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	return def, nil
}

func (r *DefinitionRepository) All(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM workflow_definitions ORDER BY created_at ASC`

	return r.queryDefinitions(ctx, query)
}

func (r *DefinitionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflow_definitions WHERE id = $1", id)
	if err != nil {
		return persistence.NewStoreError("Delete", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("Delete", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("Delete", id, persistence.ErrDefinitionNotFound)
	}

	return nil
}

// ActiveForTrigger returns active definitions whose trigger matches the given
// type and module. Definitions without a trigger module match every module.
func (r *DefinitionRepository) ActiveForTrigger(ctx context.Context, triggerType models.TriggerType, module string) ([]*models.WorkflowDefinition, error) {
	query := `
		SELECT ` + definitionColumns + `
		FROM workflow_definitions
		WHERE is_active = true
		  AND trigger_type = $1
		  AND (trigger_module = $2 OR trigger_module IS NULL)
		ORDER BY created_at ASC
	`

	return r.queryDefinitions(ctx, query, triggerType, module)
}

func (r *DefinitionRepository) ActiveTimeBased(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	query := `
		SELECT ` + definitionColumns + `
		FROM workflow_definitions
		WHERE is_active = true AND trigger_type = $1
		ORDER BY created_at ASC
	`

	return r.queryDefinitions(ctx, query, models.TriggerTimeBased)
}

func (r *DefinitionRepository) queryDefinitions(ctx context.Context, query string, args ...any) ([]*models.WorkflowDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow definitions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	defs := make([]*models.WorkflowDefinition, 0)

	for rows.Next() {
		def, err := r.scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow definition: %w", err)
		}

		defs = append(defs, def)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow definitions: %w", err)
	}

	return defs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DefinitionRepository) scanDefinition(row rowScanner) (*models.WorkflowDefinition, error) {
	var (
		def               models.WorkflowDefinition
		triggerConfigJSON []byte
		conditionsJSON    []byte
		actionsJSON       []byte
	)

	err := row.Scan(
		&def.ID,
		&def.Name,
		&def.IsActive,
		&def.TriggerType,
		&def.TriggerModule,
		&triggerConfigJSON,
		&conditionsJSON,
		&actionsJSON,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(triggerConfigJSON) > 0 {
		err = json.Unmarshal(triggerConfigJSON, &def.TriggerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
		}
	}

	err = json.Unmarshal(conditionsJSON, &def.TriggerConditions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger conditions: %w", err)
	}

	err = json.Unmarshal(actionsJSON, &def.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	return &def, nil
}
