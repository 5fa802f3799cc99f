package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crewline/automation/pkg/persistence"
	"github.com/crewline/automation/pkg/persistence/file"
	"github.com/crewline/automation/pkg/persistence/postgresql"
)

// NewPersistence selects the persistence implementation from the database URL
// scheme: postgres:// for production, anything else is treated as a file root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
