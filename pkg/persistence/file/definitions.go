package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

const definitionsDir = "definitions"

// DefinitionRepository stores workflow definitions as JSON files.
type DefinitionRepository struct {
	root string
}

func NewDefinitionRepository(root string) *DefinitionRepository {
	return &DefinitionRepository{root: root}
}

func (dr *DefinitionRepository) Save(_ context.Context, def *models.WorkflowDefinition) error {
	if err := validateEntityID(def.ID); err != nil {
		return persistence.NewStoreError("Save", def.ID, err)
	}

	dir := filepath.Join(dr.root, definitionsDir)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return persistence.NewStoreError("Save", def.ID, err)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", def.ID, err)
	}

	err = os.WriteFile(filepath.Join(dir, def.ID+".json"), data, 0600)
	if err != nil {
		return persistence.NewStoreError("Save", def.ID, err)
	}

	return nil
}

func (dr *DefinitionRepository) GetByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	if err := validateEntityID(id); err != nil {
		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	data, err := os.ReadFile(filepath.Join(dr.root, definitionsDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrDefinitionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	var def models.WorkflowDefinition

	err = json.Unmarshal(data, &def)
	if err != nil {
		return nil, persistence.NewStoreError("GetByID", id, err)
	}

	return &def, nil
}

func (dr *DefinitionRepository) All(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	dir := os.DirFS(filepath.Join(dr.root, definitionsDir))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list definition files: %w", err)
	}

	defs := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		def, err := dr.GetByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].CreatedAt.Before(defs[j].CreatedAt)
	})

	return defs, nil
}

func (dr *DefinitionRepository) Delete(_ context.Context, id string) error {
	if err := validateEntityID(id); err != nil {
		return persistence.NewStoreError("Delete", id, err)
	}

	err := os.Remove(filepath.Join(dr.root, definitionsDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewStoreError("Delete", id, persistence.ErrDefinitionNotFound)
		}

		return persistence.NewStoreError("Delete", id, err)
	}

	return nil
}

func (dr *DefinitionRepository) ActiveForTrigger(ctx context.Context, triggerType models.TriggerType, module string) ([]*models.WorkflowDefinition, error) {
	all, err := dr.All(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.WorkflowDefinition, 0)

	for _, def := range all {
		if def.IsActive && def.TriggerType == triggerType && def.MatchesModule(module) {
			matched = append(matched, def)
		}
	}

	return matched, nil
}

func (dr *DefinitionRepository) ActiveTimeBased(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	all, err := dr.All(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.WorkflowDefinition, 0)

	for _, def := range all {
		if def.IsActive && def.TriggerType == models.TriggerTimeBased {
			matched = append(matched, def)
		}
	}

	return matched, nil
}

// validateEntityID guards against path traversal in file names.
func validateEntityID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if strings.Contains(id, "..") || strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return errors.New("id contains invalid characters")
	}

	return nil
}
