// Package pagerduty integrates the PagerDuty REST v2 incidents API.
package pagerduty

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/internal/httpx"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// Name is the connector's registry name.
const Name = "pagerduty"

const defaultBaseURL = "https://api.pagerduty.com"

var (
	apiKeySpec = connector.CredentialSpec{
		Key:         "api_key",
		Description: "PagerDuty REST API key",
		EnvVar:      "PAGERDUTY_API_KEY",
		Required:    true,
	}

	// fromEmailSpec is only needed for write operations like acknowledging.
	fromEmailSpec = connector.CredentialSpec{
		Key:         "from_email",
		Description: "email address write operations act on behalf of",
		EnvVar:      "PAGERDUTY_FROM_EMAIL",
		Required:    false,
	}
)

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{apiKeySpec, fromEmailSpec}
}

// Connector talks to one PagerDuty account.
type Connector struct {
	client    *httpx.Client
	baseURL   string
	fromEmail string
	logger    *slog.Logger
}

// Option customizes the connector.
type Option func(*Connector)

// WithBaseURL overrides the API base URL. Tests point it at a local server.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// New builds the connector from resolved settings.
func New(settings connector.Settings, opts ...Option) (*Connector, error) {
	key, err := settings.Credential(apiKeySpec)
	if err != nil {
		return nil, err
	}
	fromEmail, _ := settings.Credential(fromEmailSpec)

	c := &Connector{
		baseURL:   defaultBaseURL,
		fromEmail: fromEmail,
		logger:    settings.Log().With(slog.String("connector", Name)),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []httpx.Option{
		// REST v2 uses its own token scheme, not Bearer.
		httpx.WithHeader("Authorization", "Token token="+key),
		httpx.WithHeader("Content-Type", "application/json"),
	}
	if c.fromEmail != "" {
		httpOpts = append(httpOpts, httpx.WithHeader("From", c.fromEmail))
	}
	if settings.HTTPClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(settings.HTTPClient))
	}
	c.client = httpx.NewClient(c.baseURL, httpOpts...)

	return c, nil
}

// Metadata implements connector.Connector.
func (c *Connector) Metadata() connector.Metadata {
	return connector.Metadata{
		Name:        Name,
		Version:     version.Version,
		Description: "PagerDuty incident triage",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the key works by listing account abilities.
func (c *Connector) Validate(ctx context.Context) error {
	return c.client.GetJSON(ctx, "/abilities", nil)
}

// Incident is the flattened incident shape the tools return.
type Incident struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Urgency   string `json:"urgency,omitempty"`
	Service   string `json:"service,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

// apiIncident mirrors the wire shape before flattening.
type apiIncident struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Urgency   string `json:"urgency"`
	CreatedAt string `json:"created_at"`
	HTMLURL   string `json:"html_url"`
	Service   struct {
		Summary string `json:"summary"`
	} `json:"service"`
}

func (a apiIncident) flatten() Incident {
	return Incident{
		ID:        a.ID,
		Title:     a.Title,
		Status:    a.Status,
		Urgency:   a.Urgency,
		Service:   a.Service.Summary,
		CreatedAt: a.CreatedAt,
		HTMLURL:   a.HTMLURL,
	}
}

// ListIncidentsInput is the input schema for pagerduty_list_incidents.
type ListIncidentsInput struct {
	Statuses []string `json:"statuses,omitempty" jsonschema:"filter to these statuses: triggered, acknowledged, resolved"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of incidents to return, default 25"`
}

// ListIncidentsOutput is the output schema for pagerduty_list_incidents.
type ListIncidentsOutput struct {
	Incidents []Incident `json:"incidents"`
	Count     int        `json:"count"`
}

// GetIncidentInput is the input schema for pagerduty_get_incident.
type GetIncidentInput struct {
	IncidentID string `json:"incident_id" jsonschema:"the incident id, e.g. PT4KHLK"`
}

// AcknowledgeIncidentInput is the input schema for pagerduty_acknowledge_incident.
type AcknowledgeIncidentInput struct {
	IncidentID string `json:"incident_id" jsonschema:"the incident id to acknowledge"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "pagerduty_list_incidents",
		Description: "List incidents, optionally filtered by status.",
	}, c.handleListIncidents)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "pagerduty_get_incident",
		Description: "Fetch a single incident by id.",
	}, c.handleGetIncident)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "pagerduty_acknowledge_incident",
		Description: "Acknowledge a triggered incident so it stops escalating.",
	}, c.handleAcknowledgeIncident)

	return nil
}

var validStatuses = map[string]bool{
	"triggered":    true,
	"acknowledged": true,
	"resolved":     true,
}

func (c *Connector) handleListIncidents(ctx context.Context, _ *mcp.CallToolRequest, input ListIncidentsInput) (*mcp.CallToolResult, ListIncidentsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 25
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	for _, s := range input.Statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if !validStatuses[s] {
			return nil, ListIncidentsOutput{}, errors.ValidationError(
				fmt.Sprintf("invalid status %q: must be triggered, acknowledged, or resolved", s), nil)
		}
		q.Add("statuses[]", s)
	}

	var resp struct {
		Incidents []apiIncident `json:"incidents"`
	}
	if err := c.client.GetJSON(ctx, "/incidents?"+q.Encode(), &resp); err != nil {
		return nil, ListIncidentsOutput{}, err
	}

	out := ListIncidentsOutput{
		Incidents: make([]Incident, 0, len(resp.Incidents)),
		Count:     len(resp.Incidents),
	}
	for _, inc := range resp.Incidents {
		out.Incidents = append(out.Incidents, inc.flatten())
	}

	return nil, out, nil
}

func (c *Connector) handleGetIncident(ctx context.Context, _ *mcp.CallToolRequest, input GetIncidentInput) (*mcp.CallToolResult, Incident, error) {
	if strings.TrimSpace(input.IncidentID) == "" {
		return nil, Incident{}, errors.ValidationError("incident_id is required", nil)
	}

	var resp struct {
		Incident apiIncident `json:"incident"`
	}
	path := "/incidents/" + url.PathEscape(input.IncidentID)
	if err := c.client.GetJSON(ctx, path, &resp); err != nil {
		return nil, Incident{}, err
	}

	return nil, resp.Incident.flatten(), nil
}

func (c *Connector) handleAcknowledgeIncident(ctx context.Context, _ *mcp.CallToolRequest, input AcknowledgeIncidentInput) (*mcp.CallToolResult, Incident, error) {
	if strings.TrimSpace(input.IncidentID) == "" {
		return nil, Incident{}, errors.ValidationError("incident_id is required", nil)
	}
	if c.fromEmail == "" {
		return nil, Incident{}, errors.CredentialError(
			"acknowledging requires the from_email credential", nil).
			WithDetail("credential", fromEmailSpec.Key).
			WithSuggestion("set " + fromEmailSpec.EnvVar + " to the acting user's email")
	}

	payload := map[string]any{
		"incident": map[string]string{
			"type":   "incident_reference",
			"status": "acknowledged",
		},
	}

	var resp struct {
		Incident apiIncident `json:"incident"`
	}
	path := "/incidents/" + url.PathEscape(input.IncidentID)
	if err := c.client.PutJSON(ctx, path, payload, &resp); err != nil {
		return nil, Incident{}, err
	}

	return nil, resp.Incident.flatten(), nil
}
