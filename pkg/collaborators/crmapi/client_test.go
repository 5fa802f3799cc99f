package crmapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewline/automation/pkg/collaborators/crmapi"
	"github.com/crewline/automation/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_CreateTask(t *testing.T) {
	t.Parallel()

	var got protocol.Task

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/v1/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := crmapi.NewClient(testLogger(), server.URL, "secret")

	task := protocol.Task{
		Title:         "Call Sam",
		Status:        "not_started",
		DueDate:       time.Now().UTC().Add(24 * time.Hour),
		RelatedModule: "leads",
		RelatedID:     "lead-1",
	}

	require.NoError(t, client.CreateTask(context.Background(), task))
	assert.Equal(t, "Call Sam", got.Title)
	assert.Equal(t, "lead-1", got.RelatedID)
}

func TestClient_UpdateFieldEscapesPathSegments(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/v1/records/leads/lead%2F1/fields", r.URL.EscapedPath())

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "status", payload["field"])
		assert.Equal(t, "contacted", payload["value"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := crmapi.NewClient(testLogger(), server.URL, "")

	require.NoError(t, client.UpdateField(context.Background(), "leads", "lead/1", "status", "contacted"))
}

func TestClient_NonSuccessStatusIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := crmapi.NewClient(testLogger(), server.URL, "")

	err := client.AddTag(context.Background(), "leads", "lead-1", "hot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestClient_EmailByID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/v1/users/u-7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "u-7", "email": "owner@example.com"}`))
	}))
	defer server.Close()

	client := crmapi.NewClient(testLogger(), server.URL, "")

	email, err := client.EmailByID(context.Background(), "u-7")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", email)
}

func TestClient_EmailByID_MissingEmail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "u-8"}`))
	}))
	defer server.Close()

	client := crmapi.NewClient(testLogger(), server.URL, "")

	_, err := client.EmailByID(context.Background(), "u-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email address")
}
