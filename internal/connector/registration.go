package connector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	bayerrors "github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/internal/telemetry"
)

// Registration hands connectors the runtime surfaces they register against.
type Registration struct {
	Server  *mcp.Server
	Logger  *slog.Logger
	Metrics *telemetry.ToolMetrics

	tools []ToolInfo
}

// ToolInfo records one registered tool for listings.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools returns the tools registered through this registration, in
// registration order.
func (r *Registration) Tools() []ToolInfo {
	out := make([]ToolInfo, len(r.tools))
	copy(out, r.tools)
	return out
}

// log returns the registration logger, falling back to slog.Default().
func (r *Registration) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// AddTool registers a typed tool handler on the registration's server.
// The handler is wrapped with a per-invocation request ID, start/finish log
// records, latency recording into telemetry, and normalization of
// unstructured errors. Connectors call this instead of mcp.AddTool.
func AddTool[In, Out any](reg *Registration, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(reg.Server, tool, wrapHandler(reg, tool, handler))
	reg.tools = append(reg.tools, ToolInfo{Name: tool.Name, Description: tool.Description})
}

// CollectTools reports the tools a connector would register, without serving
// them. Listings use this so tool names come from the same RegisterTools
// code path the server uses.
func CollectTools(c Connector) ([]ToolInfo, error) {
	reg := &Registration{
		Server: mcp.NewServer(&mcp.Implementation{Name: "patchbay-introspect", Version: "0"}, nil),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := c.RegisterTools(reg); err != nil {
		return nil, err
	}
	return reg.Tools(), nil
}

// wrapHandler builds the instrumented handler AddTool registers.
func wrapHandler[In, Out any](reg *Registration, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := reg.log()

		logger.Info("tool call started",
			slog.String("tool", tool.Name),
			slog.String("request_id", requestID))

		res, out, err := handler(ctx, req, input)
		latency := time.Since(start)

		if reg.Metrics != nil {
			raw, mErr := json.Marshal(input)
			if mErr != nil {
				raw = nil
			}
			reg.Metrics.Record(tool.Name, raw, latency, err != nil)
		}

		if err != nil {
			err = normalizeError(tool.Name, err)
			logger.Error("tool call failed",
				slog.String("tool", tool.Name),
				slog.String("request_id", requestID),
				slog.Duration("duration", latency),
				slog.String("error", err.Error()))
			return res, out, err
		}

		logger.Info("tool call completed",
			slog.String("tool", tool.Name),
			slog.String("request_id", requestID),
			slog.Duration("duration", latency))
		return res, out, nil
	}
}

// normalizeError guarantees tool failures surface as structured errors.
// BayErrors pass through untouched; anything else becomes a tool-failed
// error carrying the tool name.
func normalizeError(tool string, err error) error {
	var be *bayerrors.BayError
	if errors.As(err, &be) {
		return err
	}
	return bayerrors.New(bayerrors.ErrCodeToolFailed, err.Error(), err).
		WithDetail("tool", tool)
}
