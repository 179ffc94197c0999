// Package notion integrates the Notion API for workspace search, page
// retrieval, and database queries. The integration token scopes what the
// tools can see: only pages shared with the integration come back.
package notion

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/patchbaylabs/patchbay/internal/connector"
	bayerrors "github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// Name is the connector's registry name.
const Name = "notion"

var tokenSpec = connector.CredentialSpec{
	Key:         "api_token",
	Description: "Notion internal integration token",
	EnvVar:      "NOTION_API_TOKEN",
	Required:    true,
}

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{tokenSpec}
}

// Connector talks to one Notion workspace through the notionapi client.
type Connector struct {
	client *notionapi.Client
	logger *slog.Logger
}

// New builds the connector from resolved settings. The notionapi client pins
// its own base URL, so tests inject a rewriting HTTP client instead of a
// base URL option.
func New(settings connector.Settings) (*Connector, error) {
	token, err := settings.Credential(tokenSpec)
	if err != nil {
		return nil, err
	}

	var clientOpts []notionapi.ClientOption
	if settings.HTTPClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(settings.HTTPClient))
	}

	return &Connector{
		client: notionapi.NewClient(notionapi.Token(token), clientOpts...),
		logger: settings.Log().With(slog.String("connector", Name)),
	}, nil
}

// Metadata implements connector.Connector.
func (c *Connector) Metadata() connector.Metadata {
	return connector.Metadata{
		Name:        Name,
		Version:     version.Version,
		Description: "Notion pages, databases, and workspace search",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the token works by fetching the integration's bot user.
func (c *Connector) Validate(ctx context.Context) error {
	if _, err := c.client.User.Me(ctx); err != nil {
		return c.mapError("validate token", err)
	}
	return nil
}

// mapError converts notionapi failures into structured errors. API errors
// keep Notion's own error code as a detail; transport failures count as
// unreachable.
func (c *Connector) mapError(op string, err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return bayerrors.New(bayerrors.ErrCodeUpstreamStatus,
			"notion: "+op+" failed: "+apiErr.Message, err).
			WithDetail("notion_code", string(apiErr.Code))
	}
	return bayerrors.New(bayerrors.ErrCodeUpstreamUnreachable,
		"notion: "+op+" failed", err)
}

// plainText joins the plain text of a rich text run.
func plainText(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

// pageTitle finds the title property of a page. Notion names the property
// per database schema, so the lookup goes by type, not by key.
func pageTitle(p *notionapi.Page) string {
	for _, prop := range p.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(tp.Title)
		}
	}
	return ""
}
