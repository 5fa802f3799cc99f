// Package redismail enqueues outbound mail onto a Redis list consumed by the
// suite's mail delivery worker.
package redismail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/crewline/automation/pkg/protocol"
)

// DefaultQueue is the list key the delivery worker pops from.
const DefaultQueue = "crewline:outbound_email"

type Mailer struct {
	client *redis.Client
	queue  string
	logger *slog.Logger
}

// NewMailer connects to Redis at the given URL. An empty queue selects
// DefaultQueue.
func NewMailer(logger *slog.Logger, redisURL, queue string) (*Mailer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if queue == "" {
		queue = DefaultQueue
	}

	return &Mailer{
		client: redis.NewClient(opts),
		queue:  queue,
		logger: logger.With("module", "redismail"),
	}, nil
}

// Enqueue pushes the email as a JSON document. Delivery, formatting and retry
// happen on the consumer side.
func (m *Mailer) Enqueue(ctx context.Context, email protocol.OutboundEmail) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound email: %w", err)
	}

	err = m.client.LPush(ctx, m.queue, payload).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue outbound email: %w", err)
	}

	m.logger.DebugContext(ctx, "Outbound email enqueued", "to", email.To, "queue", m.queue)

	return nil
}

func (m *Mailer) HealthCheck(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *Mailer) Close() error {
	return m.client.Close()
}
