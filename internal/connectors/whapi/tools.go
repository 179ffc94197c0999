package whapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/pkg/lexsearch"
)

// SearchContactsInput is the input schema for whapi_search_contacts.
type SearchContactsInput struct {
	Query      string  `json:"query" jsonschema:"name or number fragment to look for"`
	MaxResults int     `json:"max_results,omitempty" jsonschema:"maximum number of matches to return, default 50"`
	Threshold  float64 `json:"threshold,omitempty" jsonschema:"minimum relevance score, lower-scored matches are dropped"`
}

// ContactMatch pairs a matched record with its relevance score.
type ContactMatch struct {
	Item  lexsearch.Record `json:"item"`
	Score float64          `json:"score"`
}

// SearchContactsOutput is the output schema for whapi_search_contacts.
type SearchContactsOutput struct {
	Matches []ContactMatch `json:"matches"`
	Count   int            `json:"count"`
}

// ListChatsInput is the input schema for whapi_list_chats.
type ListChatsInput struct {
	Count int `json:"count,omitempty" jsonschema:"maximum number of chats to return, default 100"`
}

// ListChatsOutput is the output schema for whapi_list_chats.
type ListChatsOutput struct {
	Chats []map[string]any `json:"chats"`
	Count int              `json:"count"`
}

// SendMessageInput is the input schema for whapi_send_message.
type SendMessageInput struct {
	To   string `json:"to" jsonschema:"chat or contact id to deliver the message to"`
	Body string `json:"body" jsonschema:"message text"`
}

// SendMessageOutput is the output schema for whapi_send_message.
type SendMessageOutput struct {
	Sent    bool           `json:"sent"`
	Message map[string]any `json:"message,omitempty"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "whapi_search_contacts",
		Description: "Search WhatsApp contacts and chats by name. Tolerates one-letter typos and partial names, returns matches ranked by relevance.",
	}, c.handleSearchContacts)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "whapi_list_chats",
		Description: "List WhatsApp chats for the channel.",
	}, c.handleListChats)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "whapi_send_message",
		Description: "Send a text message to a WhatsApp contact or group chat.",
	}, c.handleSendMessage)

	return nil
}

type contactsResponse struct {
	Contacts []map[string]any `json:"contacts"`
}

type chatsResponse struct {
	Chats []map[string]any `json:"chats"`
}

func (c *Connector) handleSearchContacts(ctx context.Context, _ *mcp.CallToolRequest, input SearchContactsInput) (*mcp.CallToolResult, SearchContactsOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchContactsOutput{}, errors.ValidationError("query must not be empty", nil)
	}

	records, err := c.fetchDirectory(ctx)
	if err != nil {
		return nil, SearchContactsOutput{}, err
	}

	idx := lexsearch.NewIndex(records,
		lexsearch.WithFields("name", "pushname", "id"),
		lexsearch.WithBoost(map[string]float64{"name": 2.0, "pushname": 1.5}),
		lexsearch.WithK1(c.search.K1),
		lexsearch.WithB(c.search.B),
		lexsearch.WithThreshold(c.search.Threshold),
		lexsearch.WithMaxResults(c.search.MaxResults),
	)

	var overrides []lexsearch.Option
	if input.MaxResults > 0 {
		overrides = append(overrides, lexsearch.WithMaxResults(input.MaxResults))
	}
	if input.Threshold > 0 {
		overrides = append(overrides, lexsearch.WithThreshold(input.Threshold))
	}

	results := idx.Search(input.Query, overrides...)

	output := SearchContactsOutput{
		Matches: make([]ContactMatch, 0, len(results)),
		Count:   len(results),
	}
	for _, r := range results {
		output.Matches = append(output.Matches, ContactMatch{Item: r.Item, Score: r.Score})
	}

	return nil, output, nil
}

// fetchDirectory pulls contacts and chats concurrently and shapes them into
// searchable records. Chat titles arrive under "name", so contacts and
// chats share field names; "kind" tells them apart in results.
func (c *Connector) fetchDirectory(ctx context.Context) ([]lexsearch.Record, error) {
	var (
		contacts contactsResponse
		chats    chatsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.client.GetJSON(gctx, fmt.Sprintf("/contacts?count=%d", fetchCount), &contacts)
	})
	g.Go(func() error {
		return c.client.GetJSON(gctx, fmt.Sprintf("/chats?count=%d", fetchCount), &chats)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]lexsearch.Record, 0, len(contacts.Contacts)+len(chats.Chats))
	for _, m := range contacts.Contacts {
		m["kind"] = "contact"
		records = append(records, m)
	}
	for _, m := range chats.Chats {
		m["kind"] = "chat"
		records = append(records, m)
	}
	return records, nil
}

func (c *Connector) handleListChats(ctx context.Context, _ *mcp.CallToolRequest, input ListChatsInput) (*mcp.CallToolResult, ListChatsOutput, error) {
	count := input.Count
	if count <= 0 {
		count = 100
	}

	var resp chatsResponse
	if err := c.client.GetJSON(ctx, fmt.Sprintf("/chats?count=%d", count), &resp); err != nil {
		return nil, ListChatsOutput{}, err
	}

	return nil, ListChatsOutput{Chats: resp.Chats, Count: len(resp.Chats)}, nil
}

func (c *Connector) handleSendMessage(ctx context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, SendMessageOutput, error) {
	if input.To == "" {
		return nil, SendMessageOutput{}, errors.ValidationError("to is required", nil)
	}
	if input.Body == "" {
		return nil, SendMessageOutput{}, errors.ValidationError("body is required", nil)
	}

	payload := map[string]string{"to": input.To, "body": input.Body}

	var resp struct {
		Sent    bool           `json:"sent"`
		Message map[string]any `json:"message"`
	}
	if err := c.client.PostJSON(ctx, "/messages/text", payload, &resp); err != nil {
		return nil, SendMessageOutput{}, err
	}

	return nil, SendMessageOutput{Sent: resp.Sent, Message: resp.Message}, nil
}
