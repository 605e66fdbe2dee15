package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/handlers"
	"github.com/ekaya-inc/assessment-console/pkg/mcp"
	mcpauth "github.com/ekaya-inc/assessment-console/pkg/mcp/auth"
	"github.com/ekaya-inc/assessment-console/pkg/mcp/tools"
	"github.com/ekaya-inc/assessment-console/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the assessment API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := a.cfg.APIURL
			if !a.api.Health(cmd.Context()) {
				return fmt.Errorf("assessment API at %s is unavailable", root)
			}
			fmt.Fprintf(a.out, "Assessment API at %s is healthy\n", root)
			return nil
		},
	}
}

func newServeMCPCmd(a *app, version string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the assessment tools over MCP (streamable HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.MCPListenAddr()
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           a.newServeMux(version),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return a.serve(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from mcp.bind_addr and mcp.port)")
	return cmd
}

func (a *app) newServeMux(version string) http.Handler {
	mcpServer := mcp.NewServer("assessment-console", version, a.logger)
	tools.RegisterTools(mcpServer.MCP(), &tools.ToolDeps{
		Client:  a.api,
		Loader:  a.cfg.Loader,
		Version: version,
		Logger:  a.logger,
	})

	keyMiddleware := mcpauth.NewMiddleware(a.cfg.MCP.APIKey, a.logger)
	if !keyMiddleware.Enabled() {
		a.logger.Warn("MCP endpoint has no API key; anyone who can reach it can call the tools")
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(a.cfg, a.api, a.logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(mcpServer, a.logger).RegisterRoutes(mux, keyMiddleware)

	return middleware.RequestLogger(a.logger.Named("http"))(mux)
}

// serve runs srv until ctx ends, then shuts it down gracefully.
func (a *app) serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting MCP server",
			zap.String("addr", srv.Addr),
			zap.String("endpoint", handlers.MCPPath),
			zap.String("api_base", a.cfg.APIBaseURL()),
			zap.String("version", a.cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("MCP server shutdown failed: %w", err)
	}
	return nil
}
