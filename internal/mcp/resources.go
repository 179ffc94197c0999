package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
)

// Resource URIs served by every patchbay server.
const (
	// ConnectorsResourceURI serves the enabled-connector catalog.
	ConnectorsResourceURI = "patchbay://connectors"

	// MetricsResourceURI serves the tool-invocation telemetry snapshot.
	MetricsResourceURI = "patchbay://metrics"
)

// ConnectorInfo describes one enabled connector in the connectors resource.
type ConnectorInfo struct {
	Name        string                     `json:"name"`
	Version     string                     `json:"version"`
	Description string                     `json:"description"`
	Credentials []connector.CredentialSpec `json:"credentials"`
	Tools       []connector.ToolInfo       `json:"tools"`
}

// ConnectorCatalogOutput is the JSON document behind patchbay://connectors
// and GET /v1/connectors.
type ConnectorCatalogOutput struct {
	Connectors []ConnectorInfo `json:"connectors"`
	Count      int             `json:"count"`
}

// registerResources registers the built-in resources. The metrics resource
// is only served when a collector is attached.
func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "connectors",
			URI:         ConnectorsResourceURI,
			Description: "Enabled connectors with their credentials and tools",
			MIMEType:    "application/json",
		},
		s.handleConnectorsResource,
	)

	if s.metrics == nil {
		return
	}
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "metrics",
			URI:         MetricsResourceURI,
			Description: "Local tool-invocation telemetry for this server",
			MIMEType:    "application/json",
		},
		s.handleMetricsResource,
	)
}

// ConnectorCatalog describes every enabled connector. Tool names come from
// the same RegisterTools path the live server used, so the catalog cannot
// drift from what hosts see.
func (s *Server) ConnectorCatalog() (*ConnectorCatalogOutput, error) {
	conns := s.registry.List()
	out := &ConnectorCatalogOutput{
		Connectors: make([]ConnectorInfo, 0, len(conns)),
		Count:      len(conns),
	}

	for _, c := range conns {
		md := c.Metadata()
		tools, err := connector.CollectTools(c)
		if err != nil {
			return nil, fmt.Errorf("collecting %s tools: %w", md.Name, err)
		}
		out.Connectors = append(out.Connectors, ConnectorInfo{
			Name:        md.Name,
			Version:     md.Version,
			Description: md.Description,
			Credentials: c.Credentials(),
			Tools:       tools,
		})
	}

	return out, nil
}

// handleConnectorsResource serves the connector catalog as JSON.
func (s *Server) handleConnectorsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	catalog, err := s.ConnectorCatalog()
	if err != nil {
		return nil, MapError(err)
	}
	return jsonResourceResult(ConnectorsResourceURI, catalog)
}

// handleMetricsResource serves the current telemetry snapshot as JSON.
func (s *Server) handleMetricsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.metrics == nil {
		return nil, NewResourceNotFoundError(MetricsResourceURI)
	}
	return jsonResourceResult(MetricsResourceURI, s.metrics.Snapshot())
}

// jsonResourceResult marshals v as the single JSON content of a resource read.
func jsonResourceResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
