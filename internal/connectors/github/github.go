// Package github integrates the GitHub REST API for repository, issue, and
// pull request lookups. Authentication is a personal access token; fine for
// public repos too, where it only buys a higher rate limit.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/patchbaylabs/patchbay/internal/connector"
	bayerrors "github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// Name is the connector's registry name.
const Name = "github"

var tokenSpec = connector.CredentialSpec{
	Key:         "token",
	Description: "GitHub personal access token",
	EnvVar:      "GITHUB_TOKEN",
	Required:    true,
}

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{tokenSpec}
}

// Connector talks to the GitHub REST API through go-github.
type Connector struct {
	client  *gh.Client
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
	token, err := settings.Credential(tokenSpec)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		logger: settings.Log().With(slog.String("connector", Name)),
	}
	for _, opt := range opts {
		opt(c)
	}

	client := gh.NewClient(settings.HTTPClient).WithAuthToken(token)
	if c.baseURL != "" {
		// go-github requires the base URL to end in a slash.
		u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/")
		if err != nil {
			return nil, bayerrors.ValidationError(
				fmt.Sprintf("invalid github base url %q", c.baseURL), err)
		}
		client.BaseURL = u
	}
	c.client = client

	return c, nil
}

// Metadata implements connector.Connector.
func (c *Connector) Metadata() connector.Metadata {
	return connector.Metadata{
		Name:        Name,
		Version:     version.Version,
		Description: "GitHub repositories, issues, and pull requests",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the token works by fetching the authenticated user.
func (c *Connector) Validate(ctx context.Context) error {
	_, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return c.mapError("validate token", err)
	}
	return nil
}

// mapError converts go-github failures into structured errors. Rate limits
// and HTTP error responses keep their status detail; everything else is
// treated as unreachable.
func (c *Connector) mapError(op string, err error) error {
	var rate *gh.RateLimitError
	if errors.As(err, &rate) {
		return bayerrors.New(bayerrors.ErrCodeUpstreamStatus,
			"github rate limit exceeded", err).
			WithDetail("reset", rate.Rate.Reset.Format(time.RFC3339)).
			WithSuggestion("wait for the rate limit window to reset")
	}

	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return bayerrors.New(bayerrors.ErrCodeUpstreamStatus,
			fmt.Sprintf("github: %s returned %d: %s", op, er.Response.StatusCode, er.Message), err).
			WithDetail("status", fmt.Sprintf("%d", er.Response.StatusCode))
	}

	return bayerrors.New(bayerrors.ErrCodeUpstreamUnreachable,
		fmt.Sprintf("github: %s failed", op), err)
}
