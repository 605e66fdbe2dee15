package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/logging"
)

// maxParamLogLength bounds each logged string argument.
const maxParamLogLength = 120

// CallLogger logs every MCP tool call with its duration and outcome.
type CallLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewCallLogger creates a CallLogger.
func NewCallLogger(logger *zap.Logger) *CallLogger {
	return &CallLogger{logger: logger.Named("mcp-calls")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (c *CallLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(c.beforeCallTool)
	hooks.AddAfterCallTool(c.afterCallTool)
	hooks.AddOnError(c.onError)
	return hooks
}

func (c *CallLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	c.startTimes.Store(id, time.Now())
}

func (c *CallLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	fields := c.baseFields(id, req)
	isError := result != nil && result.IsError
	fields = append(fields, zap.Bool("is_error", isError))

	if isError {
		c.logger.Warn("MCP tool call returned error result", fields...)
		return
	}
	c.logger.Info("MCP tool call", fields...)
}

func (c *CallLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	fields := append(c.baseFields(id, req), zap.String("error", logging.SanitizeError(err)))
	c.logger.Error("MCP tool call failed", fields...)
}

func (c *CallLogger) baseFields(id any, req *mcplib.CallToolRequest) []zap.Field {
	start, _ := c.loadAndDeleteStart(id)
	return []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Strings("params", sanitizeParams(req.Params.Arguments)),
	}
}

func (c *CallLogger) loadAndDeleteStart(id any) (time.Time, bool) {
	if v, ok := c.startTimes.LoadAndDelete(id); ok {
		return v.(time.Time), true
	}
	return time.Now(), false
}

// sanitizeParams renders arguments as sorted key=value pairs with
// credentials redacted and long values truncated.
func sanitizeParams(args any) []string {
	params, ok := args.(map[string]any)
	if !ok || len(params) == 0 {
		return nil
	}

	out := make([]string, 0, len(params))
	for k, v := range params {
		pair := logging.SanitizeString(k + "=" + stringify(v))
		out = append(out, logging.TruncateString(pair, maxParamLogLength))
	}
	sort.Strings(out)
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
