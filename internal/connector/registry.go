package connector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Registry is an ordered collection of instantiated connectors.
// Iteration order is registration order everywhere.
type Registry struct {
	connectors []Connector
	byName     map[string]Connector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Connector)}
}

// Add appends c to the registry. A second connector with the same name is
// rejected.
func (r *Registry) Add(c Connector) error {
	name := c.Metadata().Name
	if name == "" {
		return fmt.Errorf("connector has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("connector %q already registered", name)
	}
	r.connectors = append(r.connectors, c)
	r.byName[name] = c
	return nil
}

// Get returns the connector by name, or nil if absent.
func (r *Registry) Get(name string) Connector {
	return r.byName[name]
}

// List returns the connectors in registration order.
func (r *Registry) List() []Connector {
	out := make([]Connector, len(r.connectors))
	copy(out, r.connectors)
	return out
}

// Len returns the number of registered connectors.
func (r *Registry) Len() int {
	return len(r.connectors)
}

// RegisterAll registers every connector's tools through reg, in
// registration order. The first failure stops registration.
func (r *Registry) RegisterAll(reg *Registration) error {
	for _, c := range r.connectors {
		if err := c.RegisterTools(reg); err != nil {
			return fmt.Errorf("registering %s tools: %w", c.Metadata().Name, err)
		}
	}
	return nil
}

// ValidateAll checks every connector's credentials concurrently.
// Every connector is attempted even after a failure; the first error is
// returned. A plain group (not WithContext) keeps a failing connector from
// canceling its siblings' in-flight calls.
func (r *Registry) ValidateAll(ctx context.Context) error {
	var g errgroup.Group
	for _, c := range r.connectors {
		c := c // Capture loop variable
		g.Go(func() error {
			if err := c.Validate(ctx); err != nil {
				return fmt.Errorf("%s: %w", c.Metadata().Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
