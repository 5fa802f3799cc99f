package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

// ExecutionRepository handles workflow execution database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , workflow_id
  , trigger_record_id
  , trigger_module
  , status
  , execution_data
  , next_action_index
  , error_message
  , created_at
  , started_at
  , completed_at
`

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	executionData := execution.ExecutionData
	if executionData == nil {
		executionData = make(map[string]any)
	}

	dataJSON, err := json.Marshal(executionData)
	if err != nil {
		return fmt.Errorf("failed to marshal execution data: %w", err)
	}

	query := `
		INSERT INTO workflow_executions
			(id, workflow_id, trigger_record_id, trigger_module, status, execution_data, next_action_index, error_message, created_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			execution_data = EXCLUDED.execution_data,
			next_action_index = EXCLUDED.next_action_index,
			error_message = EXCLUDED.error_message,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.TriggerRecordID,
		execution.TriggerModule,
		execution.Status,
		dataJSON,
		execution.NextActionIndex,
		nullableString(execution.ErrorMessage),
		execution.CreatedAt,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := r.scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY created_at ASC
	`

	return r.queryExecutions(ctx, query, workflowID)
}

func (r *ExecutionRepository) ListByStatus(ctx context.Context, status models.ExecutionStatus) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE status = $1
		ORDER BY created_at ASC
	`

	return r.queryExecutions(ctx, query, status)
}

func (r *ExecutionRepository) queryExecutions(ctx context.Context, query string, args ...any) ([]*models.WorkflowExecution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := r.scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow executions: %w", err)
	}

	return executions, nil
}

func (r *ExecutionRepository) scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution    models.WorkflowExecution
		dataJSON     []byte
		errorMessage sql.NullString
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.TriggerRecordID,
		&execution.TriggerModule,
		&execution.Status,
		&dataJSON,
		&execution.NextActionIndex,
		&errorMessage,
		&execution.CreatedAt,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(dataJSON, &execution.ExecutionData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution data: %w", err)
	}

	if errorMessage.Valid {
		execution.ErrorMessage = errorMessage.String
	}

	return &execution, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}

	return value
}
