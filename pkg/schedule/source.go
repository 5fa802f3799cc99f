// Package schedule drives time_based workflows: it keeps a cron entry per
// active definition and emits a synthetic trigger event whenever one fires.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crewline/automation/pkg/eventbus"
	"github.com/crewline/automation/pkg/events"
	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
)

// ScheduleConfigKey is the TriggerConfig key holding the cron expression.
const ScheduleConfigKey = "schedule"

const defaultRefreshInterval = time.Minute

type cronEntry struct {
	id   cron.EntryID
	spec string
}

// Source owns the cron runner. Definitions are re-scanned on an interval so
// newly activated, edited or deactivated workflows take effect without a
// restart.
type Source struct {
	definitions persistence.DefinitionRepository
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	refresh     time.Duration

	runner *cron.Cron

	mu      sync.Mutex
	entries map[string]cronEntry
	started bool
}

func NewSource(definitions persistence.DefinitionRepository, publisher eventbus.EventPublisher, logger *slog.Logger) *Source {
	return &Source{
		definitions: definitions,
		publisher:   publisher,
		logger:      logger.With("module", "schedule_source"),
		refresh:     defaultRefreshInterval,
		runner:      cron.New(),
		entries:     make(map[string]cronEntry),
	}
}

// Start syncs the cron entries, starts the runner and keeps re-syncing until
// the context is cancelled.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()

		return nil
	}

	s.started = true
	s.mu.Unlock()

	err := s.sync(ctx)
	if err != nil {
		return err
	}

	s.runner.Start()
	s.logger.InfoContext(ctx, "Schedule source started")

	go s.refreshLoop(ctx)

	return nil
}

// Stop halts the runner and waits for in-flight fire callbacks.
func (s *Source) Stop() {
	<-s.runner.Stop().Done()
}

func (s *Source) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()

			return
		case <-ticker.C:
			err := s.sync(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to refresh schedules", "error", err)
			}
		}
	}
}

// sync reconciles cron entries with the current set of active time_based
// definitions.
func (s *Source) sync(ctx context.Context) error {
	defs, err := s.definitions.ActiveTimeBased(ctx)
	if err != nil {
		return fmt.Errorf("failed to load time_based definitions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(defs))

	for _, def := range defs {
		spec, ok := def.TriggerConfig[ScheduleConfigKey].(string)
		if !ok || spec == "" {
			s.logger.WarnContext(ctx, "time_based workflow has no schedule expression", "workflow_id", def.ID)

			continue
		}

		seen[def.ID] = true

		existing, exists := s.entries[def.ID]
		if exists && existing.spec == spec {
			continue
		}

		if exists {
			s.runner.Remove(existing.id)
		}

		entryID, err := s.runner.AddFunc(spec, s.fire(def))
		if err != nil {
			s.logger.ErrorContext(ctx, "Invalid cron expression",
				"workflow_id", def.ID,
				"schedule", spec,
				"error", err,
			)

			continue
		}

		s.entries[def.ID] = cronEntry{id: entryID, spec: spec}
		s.logger.InfoContext(ctx, "Schedule registered", "workflow_id", def.ID, "schedule", spec)
	}

	for workflowID, entry := range s.entries {
		if !seen[workflowID] {
			s.runner.Remove(entry.id)
			delete(s.entries, workflowID)
			s.logger.InfoContext(ctx, "Schedule removed", "workflow_id", workflowID)
		}
	}

	return nil
}

// fire builds the callback for one definition. The emitted event targets that
// definition alone and rides the same bus path as record events.
func (s *Source) fire(def *models.WorkflowDefinition) func() {
	workflowID := def.ID

	module := ""
	if def.TriggerModule != nil {
		module = *def.TriggerModule
	}

	return func() {
		ctx := context.Background()

		event := models.NewTriggerEvent(models.TriggerTimeBased, module, workflowID, map[string]any{
			"workflow_id":  workflowID,
			"scheduled_at": time.Now().UTC().Format(time.RFC3339),
		})

		err := s.publisher.Publish(ctx, workflowID, events.NewRecordEventReceived(event))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish scheduled trigger",
				"workflow_id", workflowID,
				"error", err,
			)

			return
		}

		s.logger.DebugContext(ctx, "Scheduled trigger fired", "workflow_id", workflowID)
	}
}
