package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metacontext/internal/metacontext"
)

func newTestServer() *Server {
	ctx := metacontext.NewContext("ctx-test")
	return NewServer(ctx, anthropic.Client{}, "test-model")
}

func TestHealthzEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestUpsertGoalEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	payload, err := json.Marshal(metacontext.GoalPayload{ID: "g1", Title: "ship the release"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap metacontext.GoalSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "ship the release", snap.Title)
}

func TestUpsertGoalEndpoint_InvalidBodyReturnsBadRequest(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnsureLaneAndListLanesEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	body, err := json.Marshal(map[string]any{"name": "core"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/lanes/core", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/lanes", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Lanes []metacontext.LaneSnapshot `json:"lanes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Lanes, 1)
	assert.Equal(t, "core", listed.Lanes[0].ID)
}

func TestSetLaneStatusEndpoint_UnknownLaneReturnsNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	body, err := json.Marshal(map[string]any{"status": metacontext.LaneDisabled})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lanes/missing/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContextPayloadEndpoint_HonorsTokenBudgetQueryParam(t *testing.T) {
	t.Parallel()
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/context?token_budget=500", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
