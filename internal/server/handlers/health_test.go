package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	failing := newMockUserStorage()
	failing.pingError = errors.New("db down")

	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
		wantBody   string
	}{
		{"no dependency", nil, http.StatusOK, "ok"},
		{"storage up", newMockUserStorage(), http.StatusOK, "ok"},
		{"storage down", failing, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(setupTestLogger(), tt.pinger, "1.2.3")

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.Health(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var healthResp HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&healthResp))
			assert.Equal(t, tt.wantBody, healthResp.Status)
			assert.Equal(t, "1.2.3", healthResp.Version)
		})
	}
}
