// Package connectors holds the catalog of shipped connectors and builds
// registries from configuration. Adding a connector means adding one
// catalog entry; the CLI, setup wizard, and server all read the same list.
package connectors

import (
	"fmt"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/connectors/github"
	"github.com/patchbaylabs/patchbay/internal/connectors/hubspot"
	"github.com/patchbaylabs/patchbay/internal/connectors/notion"
	"github.com/patchbaylabs/patchbay/internal/connectors/pagerduty"
	"github.com/patchbaylabs/patchbay/internal/connectors/pinecone"
	"github.com/patchbaylabs/patchbay/internal/connectors/replicate"
	"github.com/patchbaylabs/patchbay/internal/connectors/whapi"
)

// Factory describes one shipped connector and how to build it.
type Factory struct {
	Name        string
	Description string

	// Credentials declares what the connector needs before it is built,
	// so setup and doctor can report on unconfigured connectors.
	Credentials func() []connector.CredentialSpec

	// New builds the connector from resolved settings. The config is
	// passed for connectors that read defaults beyond credentials.
	New func(settings connector.Settings, cfg *config.Config) (connector.Connector, error)
}

// Catalog returns every shipped connector in catalog order. The order is
// fixed so listings and tool registration stay deterministic.
func Catalog() []Factory {
	return []Factory{
		{
			Name:        whapi.Name,
			Description: "WhatsApp contacts, chats, and messaging via Whapi.Cloud",
			Credentials: whapi.Credentials,
			New: func(s connector.Settings, cfg *config.Config) (connector.Connector, error) {
				return whapi.New(s, cfg.Search)
			},
		},
		{
			Name:        hubspot.Name,
			Description: "HubSpot CRM contacts",
			Credentials: hubspot.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return hubspot.New(s)
			},
		},
		{
			Name:        pagerduty.Name,
			Description: "PagerDuty incident triage",
			Credentials: pagerduty.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return pagerduty.New(s)
			},
		},
		{
			Name:        notion.Name,
			Description: "Notion pages, databases, and workspace search",
			Credentials: notion.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return notion.New(s)
			},
		},
		{
			Name:        github.Name,
			Description: "GitHub repositories, issues, and pull requests",
			Credentials: github.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return github.New(s)
			},
		},
		{
			Name:        pinecone.Name,
			Description: "Pinecone vector search over one index",
			Credentials: pinecone.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return pinecone.New(s)
			},
		},
		{
			Name:        replicate.Name,
			Description: "Replicate model predictions",
			Credentials: replicate.Credentials,
			New: func(s connector.Settings, _ *config.Config) (connector.Connector, error) {
				return replicate.New(s)
			},
		},
	}
}

// Find returns the catalog entry for name.
func Find(name string) (Factory, bool) {
	for _, f := range Catalog() {
		if f.Name == name {
			return f, true
		}
	}
	return Factory{}, false
}

// Names returns every catalog connector name in catalog order.
func Names() []string {
	cat := Catalog()
	names := make([]string, 0, len(cat))
	for _, f := range cat {
		names = append(names, f.Name)
	}
	return names
}

// Build constructs a registry holding the connectors cfg enables, in
// catalog order. base carries the shared HTTP client and logger; per
// connector, its credentials are resolved from config and environment.
// A connector that cannot be built fails the whole build rather than
// being dropped.
func Build(cfg *config.Config, base connector.Settings) (*connector.Registry, error) {
	reg := connector.NewRegistry()

	for _, f := range Catalog() {
		cc, ok := cfg.Connectors[f.Name]
		if !ok || !cc.Enabled {
			continue
		}

		settings := base
		settings.Credentials = ResolveCredentials(cfg, f.Name, f.Credentials())

		c, err := f.New(settings, cfg)
		if err != nil {
			return nil, fmt.Errorf("building %s connector: %w", f.Name, err)
		}
		if err := reg.Add(c); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// ResolveCredentials pulls each declared credential from config, falling
// back to each CredentialSpec's environment variable. Doctor and setup
// resolve through the same chain the server builds with.
func ResolveCredentials(cfg *config.Config, name string, specs []connector.CredentialSpec) map[string]string {
	creds := make(map[string]string, len(specs))
	for _, spec := range specs {
		if v := cfg.Credential(name, spec.Key, spec.EnvVar); v != "" {
			creds[spec.Key] = v
		}
	}
	return creds
}
