package file

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

const executionsDir = "executions"

// ExecutionRepository stores workflow executions as JSON files.
type ExecutionRepository struct {
	root string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if err := validateEntityID(execution.ID); err != nil {
		return persistence.NewStoreError("Save", execution.ID, err)
	}

	dir := filepath.Join(er.root, executionsDir)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return persistence.NewStoreError("Save", execution.ID, err)
	}

	toSave := *execution
	if toSave.ExecutionData == nil {
		toSave.ExecutionData = make(map[string]any)
	}

	data, err := json.Marshal(toSave)
	if err != nil {
		return persistence.NewStoreError("Save", execution.ID, err)
	}

	err = os.WriteFile(filepath.Join(dir, execution.ID+".json"), data, 0600)
	if err != nil {
		return persistence.NewStoreError("Save", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	if err := validateEntityID(id); err != nil {
		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	data, err := os.ReadFile(filepath.Join(er.root, executionsDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	var execution models.WorkflowExecution

	err = json.Unmarshal(data, &execution)
	if err != nil {
		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	return &execution, nil
}

func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	return er.list(ctx, func(execution *models.WorkflowExecution) bool {
		return execution.WorkflowID == workflowID
	})
}

func (er *ExecutionRepository) ListByStatus(ctx context.Context, status models.ExecutionStatus) ([]*models.WorkflowExecution, error) {
	return er.list(ctx, func(execution *models.WorkflowExecution) bool {
		return execution.Status == status
	})
}

func (er *ExecutionRepository) list(ctx context.Context, keep func(*models.WorkflowExecution) bool) ([]*models.WorkflowExecution, error) {
	dir := os.DirFS(filepath.Join(er.root, executionsDir))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, err
	}

	executions := make([]*models.WorkflowExecution, 0)

	for _, file := range jsonFiles {
		execution, err := er.GetByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if keep(execution) {
			executions = append(executions, execution)
		}
	}

	sort.SliceStable(executions, func(i, j int) bool {
		return executions[i].CreatedAt.Before(executions[j].CreatedAt)
	})

	return executions, nil
}
