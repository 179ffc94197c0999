package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/logging"
)

// stubConnector is a minimal connector registering echo tools.
type stubConnector struct {
	name        string
	tools       []string
	registerErr error
	validateErr error
}

type echoInput struct {
	Text string `json:"text"`
}

type echoOutput struct {
	Text string `json:"text"`
}

func (c *stubConnector) Metadata() connector.Metadata {
	return connector.Metadata{
		Name:        c.name,
		Version:     "1.0.0",
		Description: c.name + " test connector",
	}
}

func (c *stubConnector) Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{
		{Key: "api_key", Description: "API key", EnvVar: "STUB_API_KEY", Required: true},
	}
}

func (c *stubConnector) RegisterTools(reg *connector.Registration) error {
	if c.registerErr != nil {
		return c.registerErr
	}
	for _, name := range c.tools {
		connector.AddTool(reg, &mcp.Tool{Name: name, Description: "echoes its input"},
			func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoOutput, error) {
				return nil, echoOutput{Text: in.Text}, nil
			})
	}
	return nil
}

func (c *stubConnector) Validate(ctx context.Context) error {
	return c.validateErr
}

// Ensure stubConnector implements connector.Connector
var _ connector.Connector = (*stubConnector)(nil)

func newTestRegistry(t *testing.T, conns ...connector.Connector) *connector.Registry {
	t.Helper()
	registry := connector.NewRegistry()
	for _, c := range conns {
		require.NoError(t, registry.Add(c))
	}
	return registry
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	// When: creating a server without a registry
	_, err := NewServer(nil)

	// Then: construction fails
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry")
}

func TestNewServer_RegistersConnectorTools(t *testing.T) {
	// Given: two connectors with three tools between them
	registry := newTestRegistry(t,
		&stubConnector{name: "alpha", tools: []string{"alpha_echo"}},
		&stubConnector{name: "beta", tools: []string{"beta_echo", "beta_shout"}},
	)

	// When: creating the server
	srv, err := NewServer(registry, WithLogger(logging.Nop()))

	// Then: tools are listed in registration order
	require.NoError(t, err)
	require.NotNil(t, srv.MCPServer())

	tools := srv.ListTools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha_echo", tools[0].Name)
	assert.Equal(t, "beta_echo", tools[1].Name)
	assert.Equal(t, "beta_shout", tools[2].Name)
	assert.Equal(t, "echoes its input", tools[0].Description)
}

func TestNewServer_EmptyRegistry(t *testing.T) {
	// Given: no enabled connectors
	registry := connector.NewRegistry()

	// When: creating the server
	srv, err := NewServer(registry, WithLogger(logging.Nop()))

	// Then: the server still comes up, serving only built-in resources
	require.NoError(t, err)
	assert.Empty(t, srv.ListTools())
}

func TestNewServer_RegistrationFailureNamesConnector(t *testing.T) {
	// Given: a connector whose registration fails
	registry := newTestRegistry(t,
		&stubConnector{name: "broken", registerErr: errors.New("schema conflict")},
	)

	// When: creating the server
	_, err := NewServer(registry, WithLogger(logging.Nop()))

	// Then: the error names the connector
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "schema conflict")
}

func TestNewServer_Options(t *testing.T) {
	registry := newTestRegistry(t, &stubConnector{name: "alpha"})

	srv, err := NewServer(registry,
		WithLogger(logging.Nop()),
		WithInstructions("Use the alpha tools for echo workloads."),
	)

	require.NoError(t, err)
	assert.Same(t, registry, srv.Registry())
}

func TestListTools_ReturnsCopy(t *testing.T) {
	// Given: a server with one tool
	registry := newTestRegistry(t, &stubConnector{name: "alpha", tools: []string{"alpha_echo"}})
	srv, err := NewServer(registry, WithLogger(logging.Nop()))
	require.NoError(t, err)

	// When: mutating the returned slice
	tools := srv.ListTools()
	tools[0].Name = "mutated"

	// Then: the server's view is unchanged
	assert.Equal(t, "alpha_echo", srv.ListTools()[0].Name)
}
