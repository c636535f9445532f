package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/app"
	"github.com/MKhiriev/go-pim-sync/models"
)

func TestWriteJSON_SessionStatus(t *testing.T) {
	w := httptest.NewRecorder()
	status := models.SessionStatus{
		Active:    true,
		SessionID: "sess-1",
		State:     models.StateDatasetLoop.String(),
		Dataset:   "contacts",
		StartedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	n, err := WriteJSON(w, status, http.StatusOK)
	require.NoError(t, err)

	assert.Equal(t, w.Body.Len(), n)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"session_id":"sess-1"`)
	assert.Contains(t, w.Body.String(), `"dataset":"contacts"`)
}

func TestWriteJSON_StatusCode(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, map[string]string{"error": "not found"}, http.StatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestWriteJSON_Nil(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, nil, http.StatusOK)
	require.NoError(t, err)
	assert.Equal(t, "null", w.Body.String())
}

func TestWriteJSON_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, make(chan int), http.StatusOK)
	require.Error(t, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, app.MsgInternalServerError, strings.TrimSpace(w.Body.String()))
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))
}
