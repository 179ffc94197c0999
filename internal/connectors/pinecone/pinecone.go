// Package pinecone integrates the Pinecone vector database data plane.
// Tools run against one index, addressed by its index host; callers bring
// their own embeddings.
package pinecone

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/internal/httpx"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// Name is the connector's registry name.
const Name = "pinecone"

var (
	apiKeySpec = connector.CredentialSpec{
		Key:         "api_key",
		Description: "Pinecone API key",
		EnvVar:      "PINECONE_API_KEY",
		Required:    true,
	}

	// indexHostSpec is the index's data-plane host, from the Pinecone
	// console or describe_index, e.g. my-index-a1b2c3.svc.us-east-1.pinecone.io.
	indexHostSpec = connector.CredentialSpec{
		Key:         "index_host",
		Description: "Pinecone index host the data plane is served from",
		EnvVar:      "PINECONE_INDEX_HOST",
		Required:    true,
	}
)

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{apiKeySpec, indexHostSpec}
}

// Connector talks to one Pinecone index.
type Connector struct {
	client  *httpx.Client
	baseURL string
	logger  *slog.Logger
}

// Option customizes the connector.
type Option func(*Connector)

// WithBaseURL overrides the URL derived from index_host. Tests point it at
// a local server.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// New builds the connector from resolved settings.
func New(settings connector.Settings, opts ...Option) (*Connector, error) {
	key, err := settings.Credential(apiKeySpec)
	if err != nil {
		return nil, err
	}
	host, err := settings.Credential(indexHostSpec)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		baseURL: hostURL(host),
		logger:  settings.Log().With(slog.String("connector", Name)),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []httpx.Option{
		httpx.WithHeader("Api-Key", key),
		httpx.WithHeader("Content-Type", "application/json"),
	}
	if settings.HTTPClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(settings.HTTPClient))
	}
	c.client = httpx.NewClient(c.baseURL, httpOpts...)

	return c, nil
}

// hostURL accepts a bare host or a full URL for index_host.
func hostURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// Metadata implements connector.Connector.
func (c *Connector) Metadata() connector.Metadata {
	return connector.Metadata{
		Name:        Name,
		Version:     version.Version,
		Description: "Pinecone vector search over one index",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the key and host work by asking for index stats.
func (c *Connector) Validate(ctx context.Context) error {
	return c.client.PostJSON(ctx, "/describe_index_stats", struct{}{}, nil)
}

// Match is one scored neighbor from pinecone_query.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Vector is one vector for pinecone_upsert.
type Vector struct {
	ID       string         `json:"id" jsonschema:"unique vector id"`
	Values   []float64      `json:"values" jsonschema:"embedding values, length must match the index dimension"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"metadata stored alongside the vector"`
}

// QueryInput is the input schema for pinecone_query.
type QueryInput struct {
	Vector          []float64 `json:"vector" jsonschema:"query embedding, length must match the index dimension"`
	TopK            int       `json:"top_k,omitempty" jsonschema:"number of nearest neighbors to return, default 10"`
	Namespace       string    `json:"namespace,omitempty" jsonschema:"namespace to search, empty for the default namespace"`
	IncludeMetadata bool      `json:"include_metadata,omitempty" jsonschema:"return stored metadata with each match"`
}

// QueryOutput is the output schema for pinecone_query.
type QueryOutput struct {
	Matches   []Match `json:"matches"`
	Namespace string  `json:"namespace,omitempty"`
}

// UpsertInput is the input schema for pinecone_upsert.
type UpsertInput struct {
	Vectors   []Vector `json:"vectors" jsonschema:"vectors to insert or overwrite"`
	Namespace string   `json:"namespace,omitempty" jsonschema:"namespace to write into"`
}

// UpsertOutput is the output schema for pinecone_upsert.
type UpsertOutput struct {
	UpsertedCount int `json:"upserted_count"`
}

// IndexStatsInput is the input schema for pinecone_index_stats, which takes
// no arguments.
type IndexStatsInput struct{}

// IndexStatsOutput is the output schema for pinecone_index_stats.
type IndexStatsOutput struct {
	Dimension        int            `json:"dimension"`
	IndexFullness    float64        `json:"index_fullness"`
	TotalVectorCount int            `json:"total_vector_count"`
	Namespaces       map[string]int `json:"namespaces,omitempty"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "pinecone_query",
		Description: "Find the nearest neighbors of an embedding vector in the index.",
	}, c.handleQuery)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "pinecone_upsert",
		Description: "Insert or overwrite vectors in the index.",
	}, c.handleUpsert)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "pinecone_index_stats",
		Description: "Report the index dimension, fullness, and per-namespace vector counts.",
	}, c.handleIndexStats)

	return nil
}

func (c *Connector) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	if len(input.Vector) == 0 {
		return nil, QueryOutput{}, errors.ValidationError("vector must not be empty", nil)
	}

	topK := input.TopK
	if topK <= 0 {
		topK = 10
	}

	payload := map[string]any{
		"vector":          input.Vector,
		"topK":            topK,
		"includeMetadata": input.IncludeMetadata,
	}
	if input.Namespace != "" {
		payload["namespace"] = input.Namespace
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
		Namespace string `json:"namespace"`
	}
	if err := c.client.PostJSON(ctx, "/query", payload, &resp); err != nil {
		return nil, QueryOutput{}, err
	}

	out := QueryOutput{
		Matches:   make([]Match, 0, len(resp.Matches)),
		Namespace: resp.Namespace,
	}
	for _, m := range resp.Matches {
		out.Matches = append(out.Matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}

	return nil, out, nil
}

func (c *Connector) handleUpsert(ctx context.Context, _ *mcp.CallToolRequest, input UpsertInput) (*mcp.CallToolResult, UpsertOutput, error) {
	if len(input.Vectors) == 0 {
		return nil, UpsertOutput{}, errors.ValidationError("vectors must not be empty", nil)
	}
	for i, v := range input.Vectors {
		if v.ID == "" {
			return nil, UpsertOutput{}, errors.ValidationError(
				fmt.Sprintf("vectors[%d] has no id", i), nil)
		}
		if len(v.Values) == 0 {
			return nil, UpsertOutput{}, errors.ValidationError(
				fmt.Sprintf("vectors[%d] has no values", i), nil)
		}
	}

	payload := map[string]any{"vectors": input.Vectors}
	if input.Namespace != "" {
		payload["namespace"] = input.Namespace
	}

	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := c.client.PostJSON(ctx, "/vectors/upsert", payload, &resp); err != nil {
		return nil, UpsertOutput{}, err
	}

	return nil, UpsertOutput{UpsertedCount: resp.UpsertedCount}, nil
}

func (c *Connector) handleIndexStats(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatsInput) (*mcp.CallToolResult, IndexStatsOutput, error) {
	var resp struct {
		Namespaces map[string]struct {
			VectorCount int `json:"vectorCount"`
		} `json:"namespaces"`
		Dimension        int     `json:"dimension"`
		IndexFullness    float64 `json:"indexFullness"`
		TotalVectorCount int     `json:"totalVectorCount"`
	}
	if err := c.client.PostJSON(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, IndexStatsOutput{}, err
	}

	out := IndexStatsOutput{
		Dimension:        resp.Dimension,
		IndexFullness:    resp.IndexFullness,
		TotalVectorCount: resp.TotalVectorCount,
	}
	if len(resp.Namespaces) > 0 {
		out.Namespaces = make(map[string]int, len(resp.Namespaces))
		for name, ns := range resp.Namespaces {
			out.Namespaces[name] = ns.VectorCount
		}
	}

	return nil, out, nil
}
