package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crewline/automation/pkg/eventbus"
	"github.com/crewline/automation/pkg/events"
	"github.com/crewline/automation/pkg/persistence"
)

// Dispatcher consumes trigger events from the bus, matches them against
// stored definitions and runs each resulting execution on its own goroutine.
// Executions are independent: a slow delayed sequence never blocks others,
// and one failing never affects another.
type Dispatcher struct {
	matcher     *Matcher
	scheduler   *Scheduler
	definitions persistence.DefinitionRepository
	subscriber  eventbus.EventSubscriber
	logger      *slog.Logger

	wg sync.WaitGroup
}

func NewDispatcher(
	matcher *Matcher,
	scheduler *Scheduler,
	definitions persistence.DefinitionRepository,
	subscriber eventbus.EventSubscriber,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		matcher:     matcher,
		scheduler:   scheduler,
		definitions: definitions,
		subscriber:  subscriber,
		logger:      logger.With("module", "dispatcher"),
	}
}

// Start registers the bus handler and begins consuming. It returns once the
// subscription is established; executions run in the background until the
// context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.subscriber.Handle(events.RecordEventReceivedType, d.handleRecordEvent)

	err := d.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to trigger events: %w", err)
	}

	d.logger.InfoContext(ctx, "Dispatcher started")

	return nil
}

// Wait blocks until all in-flight executions have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) handleRecordEvent(ctx context.Context, event any) error {
	received, ok := event.(*events.RecordEventReceived)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	executions, err := d.matcher.Match(ctx, received.Event)
	if err != nil {
		return fmt.Errorf("failed to match trigger event: %w", err)
	}

	for _, execution := range executions {
		def, err := d.definitions.GetByID(ctx, execution.WorkflowID)
		if err != nil {
			d.logger.ErrorContext(ctx, "Failed to load definition for matched execution",
				"workflow_id", execution.WorkflowID,
				"execution_id", execution.ID,
				"error", err,
			)

			continue
		}

		d.wg.Add(1)

		go func() {
			defer d.wg.Done()

			err := d.scheduler.Run(ctx, def, execution)
			if err != nil {
				// Already recorded on the execution; nothing to propagate.
				d.logger.DebugContext(ctx, "Execution finished with error",
					"execution_id", execution.ID,
					"error", err,
				)
			}
		}()
	}

	return nil
}
