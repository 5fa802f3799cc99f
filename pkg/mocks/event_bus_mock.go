package mocks

import (
	"context"
	"sync"

	"github.com/crewline/automation/pkg/eventbus"
	"github.com/crewline/automation/pkg/events"
)

// RecordingPublisher captures published events in memory for assertions.
type RecordingPublisher struct {
	mu        sync.Mutex
	published []eventbus.Event

	// PublishErr, when set, is returned from every Publish call.
	PublishErr error
}

func (p *RecordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	if p.PublishErr != nil {
		return p.PublishErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = append(p.published, event)

	return nil
}

// Published returns a snapshot of every captured event.
func (p *RecordingPublisher) Published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]eventbus.Event, len(p.published))
	copy(snapshot, p.published)

	return snapshot
}

// PublishedTypes returns the captured event types in publish order.
func (p *RecordingPublisher) PublishedTypes() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.published))
	for _, event := range p.published {
		types = append(types, event.GetType())
	}

	return types
}
