package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/config"
)

// backendCheckTimeout bounds the backend check made by /ping.
const backendCheckTimeout = 3 * time.Second

// BackendChecker reports whether the assessment API answers its health check.
type BackendChecker interface {
	Health(ctx context.Context) bool
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	APIBase     string `json:"api_base"`
	Backend     string `json:"backend"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg     *config.Config
	backend BackendChecker
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. backend may be nil, in which
// case /ping reports the backend as "unknown".
func NewHealthHandler(cfg *config.Config, backend BackendChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, backend: backend, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health. It only says this process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping with version details and backend reachability.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		if err := ErrorResponse(w, http.StatusInternalServerError, "hostname_unavailable", "failed to get hostname"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	backend := "unknown"
	if h.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), backendCheckTimeout)
		defer cancel()
		if h.backend.Health(ctx) {
			backend = "ok"
		} else {
			backend = "unreachable"
		}
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "assessment-console",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		APIBase:     h.cfg.APIBaseURL(),
		Backend:     backend,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
