// Package replicate integrates the Replicate model-hosting API. Predictions
// run asynchronously: create returns a starting prediction and get polls it
// until the status reaches succeeded or failed.
package replicate

import (
	"context"
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
const Name = "replicate"

const defaultBaseURL = "https://api.replicate.com"

var tokenSpec = connector.CredentialSpec{
	Key:         "api_token",
	Description: "Replicate API token",
	EnvVar:      "REPLICATE_API_TOKEN",
	Required:    true,
}

// Credentials declares the credentials the connector needs.
func Credentials() []connector.CredentialSpec {
	return []connector.CredentialSpec{tokenSpec}
}

// Connector talks to the Replicate API for one account.
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
	token, err := settings.Credential(tokenSpec)
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

	httpOpts := []httpx.Option{
		httpx.WithBearerToken(token),
		httpx.WithHeader("Content-Type", "application/json"),
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
		Description: "Replicate model predictions",
	}
}

// Credentials implements connector.Connector.
func (c *Connector) Credentials() []connector.CredentialSpec {
	return Credentials()
}

// Validate proves the token works by fetching the account.
func (c *Connector) Validate(ctx context.Context) error {
	return c.client.GetJSON(ctx, "/v1/account", nil)
}

// Prediction is the flattened prediction shape both tools return.
type Prediction struct {
	ID          string         `json:"id"`
	Version     string         `json:"version,omitempty"`
	Status      string         `json:"status"`
	Input       map[string]any `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
	PredictTime float64        `json:"predict_time,omitempty"`
}

// apiPrediction mirrors the wire shape before flattening.
type apiPrediction struct {
	ID          string         `json:"id"`
	Version     string         `json:"version"`
	Status      string         `json:"status"`
	Input       map[string]any `json:"input"`
	Output      any            `json:"output"`
	Error       *string        `json:"error"`
	CreatedAt   string         `json:"created_at"`
	CompletedAt string         `json:"completed_at"`
	Metrics     struct {
		PredictTime float64 `json:"predict_time"`
	} `json:"metrics"`
}

func (a apiPrediction) flatten() Prediction {
	p := Prediction{
		ID:          a.ID,
		Version:     a.Version,
		Status:      a.Status,
		Input:       a.Input,
		Output:      a.Output,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
		PredictTime: a.Metrics.PredictTime,
	}
	if a.Error != nil {
		p.Error = *a.Error
	}
	return p
}

// CreatePredictionInput is the input schema for replicate_create_prediction.
type CreatePredictionInput struct {
	Version string         `json:"version" jsonschema:"the model version id to run"`
	Input   map[string]any `json:"input" jsonschema:"the model's named inputs, e.g. {\"prompt\": \"...\"}"`
}

// GetPredictionInput is the input schema for replicate_get_prediction.
type GetPredictionInput struct {
	PredictionID string `json:"prediction_id" jsonschema:"the prediction id returned by create"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "replicate_create_prediction",
		Description: "Start a model prediction. Returns immediately with a starting prediction; poll it with replicate_get_prediction.",
	}, c.handleCreatePrediction)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "replicate_get_prediction",
		Description: "Fetch a prediction's status and, once finished, its output.",
	}, c.handleGetPrediction)

	return nil
}

func (c *Connector) handleCreatePrediction(ctx context.Context, _ *mcp.CallToolRequest, input CreatePredictionInput) (*mcp.CallToolResult, Prediction, error) {
	if strings.TrimSpace(input.Version) == "" {
		return nil, Prediction{}, errors.ValidationError("version is required", nil)
	}
	if len(input.Input) == 0 {
		return nil, Prediction{}, errors.ValidationError("input must not be empty", nil)
	}

	payload := map[string]any{
		"version": input.Version,
		"input":   input.Input,
	}

	var resp apiPrediction
	if err := c.client.PostJSON(ctx, "/v1/predictions", payload, &resp); err != nil {
		return nil, Prediction{}, err
	}

	return nil, resp.flatten(), nil
}

func (c *Connector) handleGetPrediction(ctx context.Context, _ *mcp.CallToolRequest, input GetPredictionInput) (*mcp.CallToolResult, Prediction, error) {
	if strings.TrimSpace(input.PredictionID) == "" {
		return nil, Prediction{}, errors.ValidationError("prediction_id is required", nil)
	}

	var resp apiPrediction
	path := "/v1/predictions/" + url.PathEscape(input.PredictionID)
	if err := c.client.GetJSON(ctx, path, &resp); err != nil {
		return nil, Prediction{}, err
	}

	return nil, resp.flatten(), nil
}
