package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/pkg/version"
)

// readHeaderTimeout bounds how long a client may take to send request headers.
const readHeaderTimeout = 10 * time.Second

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is canceled.
// Alongside /mcp the router exposes GET /healthz and GET /v1/connectors for
// load balancers and non-MCP callers.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	s.logger.Info("starting MCP server",
		slog.String("transport", "http"),
		slog.String("addr", addr),
		slog.Int("connectors", s.registry.Len()),
		slog.Int("tools", len(s.tools)))

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		s.logger.Info("MCP server stopped")
		return nil
	}
	return err
}

// httpHandler builds the router ServeHTTP mounts. Factored out so tests can
// drive it through httptest.
func (s *Server) httpHandler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, nil))
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/connectors", s.handleConnectorsHTTP).Methods(http.MethodGet)

	return handlers.CombinedLoggingHandler(&accessLogWriter{logger: s.logger}, r)
}

// handleHealthz reports liveness plus enough detail to spot a misdeployed
// server at a glance.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    version.Version,
		"connectors": s.registry.Len(),
		"tools":      len(s.tools),
	})
}

// handleConnectorsHTTP serves the same catalog document as the
// patchbay://connectors resource.
func (s *Server) handleConnectorsHTTP(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.ConnectorCatalog()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// accessLogWriter forwards access-log lines from gorilla/handlers into slog,
// one record per request.
type accessLogWriter struct {
	logger *slog.Logger
}

func (w *accessLogWriter) Write(p []byte) (int, error) {
	w.logger.Info("http request",
		slog.String("line", strings.TrimRight(string(p), "\n")))
	return len(p), nil
}
