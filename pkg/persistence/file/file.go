// Package file provides file-based persistence, one JSON document per entity.
// Suited to development and tests; production deployments use postgresql.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/crewline/automation/pkg/persistence"
)

type Persistence struct {
	root        string
	definitions *DefinitionRepository
	executions  *ExecutionRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A file:// prefix is stripped so database-url style configuration
// works.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:        cleanRoot,
		definitions: NewDefinitionRepository(cleanRoot),
		executions:  NewExecutionRepository(cleanRoot),
	}
}

func (fp *Persistence) Definitions() persistence.DefinitionRepository {
	return fp.definitions
}

func (fp *Persistence) Executions() persistence.ExecutionRepository {
	return fp.executions
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
