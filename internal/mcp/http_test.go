package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/internal/logging"
)

func newHTTPTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := newTestRegistry(t,
		&stubConnector{name: "alpha", tools: []string{"alpha_echo"}},
	)
	srv, err := NewServer(registry, WithLogger(logging.Nop()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.httpHandler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPHandler_Healthz(t *testing.T) {
	// Given: a running HTTP handler
	ts := newHTTPTestServer(t)

	// When: probing the health endpoint
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Then: a JSON liveness document is returned
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["connectors"])
	assert.Equal(t, float64(1), body["tools"])
}

func TestHTTPHandler_Connectors(t *testing.T) {
	// Given: a running HTTP handler
	ts := newHTTPTestServer(t)

	// When: listing connectors over plain HTTP
	resp, err := http.Get(ts.URL + "/v1/connectors")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Then: the same catalog as the MCP resource is served
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog ConnectorCatalogOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	require.Equal(t, 1, catalog.Count)
	assert.Equal(t, "alpha", catalog.Connectors[0].Name)
	require.Len(t, catalog.Connectors[0].Tools, 1)
	assert.Equal(t, "alpha_echo", catalog.Connectors[0].Tools[0].Name)
}

func TestHTTPHandler_ConnectorsRejectsPost(t *testing.T) {
	// Given: a running HTTP handler
	ts := newHTTPTestServer(t)

	// When: posting to the read-only catalog endpoint
	resp, err := http.Post(ts.URL+"/v1/connectors", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Then: the method is rejected
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPHandler_MountsMCPEndpoint(t *testing.T) {
	// Given: a running HTTP handler
	ts := newHTTPTestServer(t)

	// When: hitting the MCP endpoint outside a session
	resp, err := http.Get(ts.URL + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Then: the route exists; the streamable handler decides the status
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPHandler_UnknownRoute(t *testing.T) {
	ts := newHTTPTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
