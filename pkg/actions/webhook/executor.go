// Package webhook posts trigger data to an external HTTP endpoint.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"url": {"type": "string", "minLength": 1},
		"method": {"type": "string"},
		"headers": {"type": "object"},
		"payload": {"type": "string"},
		"retry": {
			"type": "object",
			"properties": {
				"attempts": {"type": "number", "minimum": 1},
				"delay_seconds": {"type": "number", "minimum": 0}
			}
		}
	},
	"required": ["url"]
}`

const defaultTimeout = 30 * time.Second

// RetryConfig bounds retries for transient failures (network errors and 5xx
// responses). Non-retryable failures propagate immediately.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

type Executor struct {
	client *http.Client
}

func NewExecutor() *Executor {
	return &Executor{client: &http.Client{Timeout: defaultTimeout}}
}

func (e *Executor) ID() string           { return "webhook" }
func (e *Executor) ConfigSchema() string { return configSchema }

func (e *Executor) Execute(ctx context.Context, config map[string]any, data map[string]any) error {
	url, _ := config["url"].(string)
	if url == "" {
		return fmt.Errorf("webhook requires a url")
	}

	method := strings.ToUpper(strings.TrimSpace(stringOr(config["method"], http.MethodPost)))

	body, err := requestBody(config, data)
	if err != nil {
		return err
	}

	retry := parseRetry(config)

	var lastErr error

	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(retry.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = e.send(ctx, method, url, config, body)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", retry.Attempts, lastErr)
}

func (e *Executor) send(ctx context.Context, method, url string, config map[string]any, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, value := range headers {
			if strVal, isStr := value.(string); isStr {
				req.Header.Set(key, strVal)
			}
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return &transientError{fmt.Errorf("webhook request failed: %w", err)}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &transientError{fmt.Errorf("webhook returned status %d", resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// requestBody uses the configured payload template when present (the
// scheduler has already interpolated it) and falls back to the raw trigger
// data.
func requestBody(config map[string]any, data map[string]any) ([]byte, error) {
	if payload, ok := config["payload"].(string); ok && strings.TrimSpace(payload) != "" {
		return []byte(payload), nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	return body, nil
}

func parseRetry(config map[string]any) RetryConfig {
	retry := RetryConfig{Attempts: 1, Delay: 0}

	retryMap, ok := config["retry"].(map[string]any)
	if !ok {
		return retry
	}

	if attempts, ok := retryMap["attempts"].(float64); ok && attempts >= 1 {
		retry.Attempts = int(attempts)
	}

	if delay, ok := retryMap["delay_seconds"].(float64); ok && delay >= 0 {
		retry.Delay = time.Duration(delay * float64(time.Second))
	}

	return retry
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var transient *transientError

	return errors.As(err, &transient)
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}

	return fallback
}
