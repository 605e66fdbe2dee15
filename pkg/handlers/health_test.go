package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/config"
)

type stubChecker bool

func (p stubChecker) Health(context.Context) bool { return bool(p) }

func testConfig() *config.Config {
	return &config.Config{
		APIURL:  "http://backend:8000",
		Version: "test-version",
		Env:     "test",
	}
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(testConfig(), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthHandler_Ping(t *testing.T) {
	tests := []struct {
		name    string
		backend BackendChecker
		want    string
	}{
		{name: "no checker", backend: nil, want: "unknown"},
		{name: "backend up", backend: stubChecker(true), want: "ok"},
		{name: "backend down", backend: stubChecker(false), want: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(testConfig(), tt.backend, zap.NewNop())

			rec := httptest.NewRecorder()
			handler.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp PingResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, "test-version", resp.Version)
			assert.Equal(t, "assessment-console", resp.Service)
			assert.Equal(t, "http://backend:8000/api", resp.APIBase)
			assert.Equal(t, tt.want, resp.Backend)
		})
	}
}

func TestHealthHandler_RegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(testConfig(), nil, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
