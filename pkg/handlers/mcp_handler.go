package handlers

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/mcp"
	mcpauth "github.com/ekaya-inc/assessment-console/pkg/mcp/auth"
)

// MCPPath is where the MCP endpoint is mounted.
const MCPPath = "/mcp"

// MCPHandler handles MCP protocol requests over HTTP.
type MCPHandler struct {
	httpServer *server.StreamableHTTPServer
	logger     *zap.Logger
}

// NewMCPHandler creates a new MCP handler from an MCP server.
func NewMCPHandler(mcpServer *mcp.Server, logger *zap.Logger) *MCPHandler {
	return &MCPHandler{
		httpServer: mcpServer.NewStreamableHTTPServer(),
		logger:     logger,
	}
}

// RegisterRoutes mounts the MCP endpoint. Non-POST requests are rejected
// before the key check.
func (h *MCPHandler) RegisterRoutes(mux *http.ServeMux, keyMiddleware *mcpauth.Middleware) {
	mux.Handle(MCPPath, h.requirePOST(keyMiddleware.RequireKey(h.httpServer)))
}

// requirePOST returns 405 Method Not Allowed for non-POST requests.
func (h *MCPHandler) requirePOST(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
