// Package mcpauth guards the MCP endpoint with a static bearer key.
package mcpauth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware checks the MCP API key and answers failures with RFC 6750
// WWW-Authenticate headers.
type Middleware struct {
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new MCP auth middleware. An empty apiKey
// disables the check.
func NewMiddleware(apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		apiKey: apiKey,
		logger: logger.Named("mcp-auth"),
	}
}

// Enabled reports whether requests must carry the key.
func (m *Middleware) Enabled() bool {
	return m.apiKey != ""
}

// RequireKey rejects requests whose bearer token is not the configured key.
func (m *Middleware) RequireKey(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.logger.Debug("MCP auth failed: missing bearer token", zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_request", "Missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.apiKey)) != 1 {
			m.logger.Warn("MCP auth failed: invalid key", zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "The access token is invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeWWWAuthenticate writes an RFC 6750 Bearer token error response.
// See: https://datatracker.ietf.org/doc/html/rfc6750#section-3
func (m *Middleware) writeWWWAuthenticate(w http.ResponseWriter, status int, errorCode, description string) {
	headerValue := `Bearer error="` + errorCode + `", error_description="` + description + `"`
	w.Header().Set("WWW-Authenticate", headerValue)
	w.WriteHeader(status)
}
