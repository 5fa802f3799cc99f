// Package crmapi is the HTTP client for the suite's internal record API. It
// backs the task, note, record, tag and user collaborators the action
// executors write through.
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/crewline/automation/pkg/protocol"
)

const defaultTimeout = 15 * time.Second

// Client implements protocol.TaskStore, NoteStore, RecordStore, TagStore and
// UserDirectory against the suite's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("module", "crmapi"),
	}
}

func (c *Client) CreateTask(ctx context.Context, task protocol.Task) error {
	return c.post(ctx, "/internal/v1/tasks", task)
}

func (c *Client) CreateNote(ctx context.Context, note protocol.Note) error {
	return c.post(ctx, "/internal/v1/notes", note)
}

func (c *Client) UpdateField(ctx context.Context, module, recordID, field string, value any) error {
	path := fmt.Sprintf("/internal/v1/records/%s/%s/fields",
		url.PathEscape(module), url.PathEscape(recordID))

	return c.post(ctx, path, map[string]any{
		"field": field,
		"value": value,
	})
}

func (c *Client) AddTag(ctx context.Context, module, recordID, tag string) error {
	path := fmt.Sprintf("/internal/v1/records/%s/%s/tags",
		url.PathEscape(module), url.PathEscape(recordID))

	return c.post(ctx, path, map[string]any{"tag": tag})
}

func (c *Client) EmailByID(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/internal/v1/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return "", err
	}

	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user lookup for %s returned status %d", userID, resp.StatusCode)
	}

	var user struct {
		Email string `json:"email"`
	}

	err = json.NewDecoder(resp.Body).Decode(&user)
	if err != nil {
		return "", fmt.Errorf("failed to decode user %s: %w", userID, err)
	}

	if user.Email == "" {
		return "", fmt.Errorf("user %s has no email address", userID)
	}

	return user.Email, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
