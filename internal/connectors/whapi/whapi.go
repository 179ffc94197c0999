// Package whapi integrates WhatsApp messaging through the Whapi.Cloud
// gateway. Contact search runs on the lexsearch engine over records fetched
// live from the API: the handlers never rank by hand and the engine never
// sees HTTP.
package whapi

import (
	"context"
	"log/slog"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/httpx"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// Name is the connector's registry name.
const Name = "whapi"

const defaultBaseURL = "https://gate.whapi.cloud"

// fetchCount is how many contacts and chats one search pulls from the API.
const fetchCount = 500

var apiTokenSpec = connector.CredentialSpec{
	Key:         "api_token",
	Description: "Whapi.Cloud channel API token",
	EnvVar:      "WHAPI_API_TOKEN",
	Required:    true,
}

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{apiTokenSpec}
}

// Connector talks to one Whapi.Cloud channel.
type Connector struct {
	client  *httpx.Client
	baseURL string
	search  config.SearchConfig
	logger  *slog.Logger
}

// Option customizes the connector.
type Option func(*Connector)

// WithBaseURL overrides the API base URL. Tests point it at a local server.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// New builds the connector from resolved settings. search carries the
// ranking defaults applied to contact searches.
func New(settings connector.Settings, search config.SearchConfig, opts ...Option) (*Connector, error) {
	token, err := settings.Credential(apiTokenSpec)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		baseURL: defaultBaseURL,
		search:  search,
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
		Description: "WhatsApp contacts, chats, and messaging via Whapi.Cloud",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the token works by asking for channel health.
func (c *Connector) Validate(ctx context.Context) error {
	return c.client.GetJSON(ctx, "/health", nil)
}
