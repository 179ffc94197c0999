// Package connector defines the contract every patchbay integration
// implements and the registry the runtime serves them from.
//
// A connector bundles the metadata, credential requirements, and MCP tools
// for one upstream service. Connectors are constructed from Settings,
// collected into a Registry, and wired onto the MCP server through a
// Registration. Tool handlers added via AddTool are wrapped with request
// logging, latency telemetry, and structured-error normalization.
package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patchbaylabs/patchbay/internal/errors"
)

// Metadata identifies a connector in listings and the connectors resource.
type Metadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// CredentialSpec declares one credential a connector needs. Key addresses
// the value under the connector's credentials block in config; EnvVar names
// the environment variable consulted when the config value is absent.
type CredentialSpec struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	EnvVar      string `json:"env_var"`
	Required    bool   `json:"required"`
}

// Connector is implemented by every service integration.
type Connector interface {
	// Metadata returns the connector's identity.
	Metadata() Metadata

	// Credentials declares the credentials the connector reads from Settings.
	Credentials() []CredentialSpec

	// RegisterTools adds the connector's tools to the server in reg.
	RegisterTools(reg *Registration) error

	// Validate proves the configured credentials work with one cheap
	// authenticated call. Used by doctor and at serve startup.
	Validate(ctx context.Context) error
}

// Settings carries the resolved inputs concrete connectors are built from.
type Settings struct {
	// Credentials holds credential values keyed by CredentialSpec.Key.
	Credentials map[string]string

	// HTTPClient, when non-nil, replaces the default client for API calls.
	// Tests point it at httptest servers.
	HTTPClient *http.Client

	// Logger receives construction and validation logs. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// Credential returns the configured value for spec. A missing or blank
// required credential is a credential error naming the key and its
// environment override; optional credentials return "" without error.
func (s Settings) Credential(spec CredentialSpec) (string, error) {
	v := strings.TrimSpace(s.Credentials[spec.Key])
	if v == "" && spec.Required {
		return "", errors.CredentialError(
			fmt.Sprintf("credential %q is not configured", spec.Key), nil).
			WithDetail("credential", spec.Key).
			WithSuggestion(fmt.Sprintf("set %s or run 'patchbay setup'", spec.EnvVar))
	}
	return v, nil
}

// Log returns the settings logger, falling back to slog.Default().
func (s Settings) Log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
