// Package hubspot integrates the HubSpot CRM v3 objects API.
package hubspot

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
const Name = "hubspot"

const defaultBaseURL = "https://api.hubapi.com"

const contactsPath = "/crm/v3/objects/contacts"

var accessTokenSpec = connector.CredentialSpec{
	Key:         "access_token",
	Description: "HubSpot private app access token",
	EnvVar:      "HUBSPOT_ACCESS_TOKEN",
	Required:    true,
}

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{accessTokenSpec}
}

// Connector talks to one HubSpot account.
type Connector struct {
	client  *httpx.Client
	baseURL string
	logger  *slog.Logger
}

// Option customizes the connector.
type Option func(*Connector)

// WithBaseURL overrides the API base URL. Tests point it at a local server.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// New builds the connector from resolved settings.
func New(settings connector.Settings, opts ...Option) (*Connector, error) {
	token, err := settings.Credential(accessTokenSpec)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		baseURL: defaultBaseURL,
		logger:  settings.Log().With(slog.String("connector", Name)),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []httpx.Option{httpx.WithBearerToken(token)}
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
		Description: "HubSpot CRM contacts",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the token works with a one-contact page fetch.
func (c *Connector) Validate(ctx context.Context) error {
	return c.client.GetJSON(ctx, contactsPath+"?limit=1", nil)
}

// Contact is the CRM contact shape the tools return, kept in HubSpot's own
// field names so results line up with the service's UI and docs.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt,omitempty"`
	UpdatedAt  string            `json:"updatedAt,omitempty"`
}

type listResponse struct {
	Results []Contact `json:"results"`
}

// ListContactsInput is the input schema for hubspot_list_contacts.
type ListContactsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of contacts to return, default 20, capped at 100"`
}

// ListContactsOutput is the output schema for hubspot_list_contacts.
type ListContactsOutput struct {
	Contacts []Contact `json:"contacts"`
	Count    int       `json:"count"`
}

// GetContactInput is the input schema for hubspot_get_contact.
type GetContactInput struct {
	ContactID string `json:"contact_id" jsonschema:"the contact's HubSpot object id"`
}

// CreateContactInput is the input schema for hubspot_create_contact.
type CreateContactInput struct {
	Properties map[string]string `json:"properties" jsonschema:"contact properties, e.g. email, firstname, lastname"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "hubspot_list_contacts",
		Description: "List CRM contacts with their properties.",
	}, c.handleListContacts)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "hubspot_get_contact",
		Description: "Fetch a single CRM contact by its object id.",
	}, c.handleGetContact)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "hubspot_create_contact",
		Description: "Create a CRM contact from a map of properties.",
	}, c.handleCreateContact)

	return nil
}

func (c *Connector) handleListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var resp listResponse
	if err := c.client.GetJSON(ctx, fmt.Sprintf("%s?limit=%d", contactsPath, limit), &resp); err != nil {
		return nil, ListContactsOutput{}, err
	}

	return nil, ListContactsOutput{Contacts: resp.Results, Count: len(resp.Results)}, nil
}

func (c *Connector) handleGetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, Contact, error) {
	if strings.TrimSpace(input.ContactID) == "" {
		return nil, Contact{}, errors.ValidationError("contact_id is required", nil)
	}

	var contact Contact
	path := contactsPath + "/" + url.PathEscape(input.ContactID)
	if err := c.client.GetJSON(ctx, path, &contact); err != nil {
		return nil, Contact{}, err
	}

	return nil, contact, nil
}

func (c *Connector) handleCreateContact(ctx context.Context, _ *mcp.CallToolRequest, input CreateContactInput) (*mcp.CallToolResult, Contact, error) {
	if len(input.Properties) == 0 {
		return nil, Contact{}, errors.ValidationError("properties must not be empty", nil)
	}

	payload := map[string]any{"properties": input.Properties}

	var contact Contact
	if err := c.client.PostJSON(ctx, contactsPath, payload, &contact); err != nil {
		return nil, Contact{}, err
	}

	return nil, contact, nil
}
