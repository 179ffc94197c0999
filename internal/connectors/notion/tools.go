package notion

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
)

// Notion pages results at 100 items max.
const maxPageSize = 100

// SearchResult is one flattened hit from notion_search.
type SearchResult struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
	LastEdited string `json:"last_edited,omitempty"`
}

// SearchInput is the input schema for notion_search.
type SearchInput struct {
	Query  string `json:"query,omitempty" jsonschema:"text matched against page and database titles, empty lists everything shared with the integration"`
	Filter string `json:"filter,omitempty" jsonschema:"restrict results to 'page' or 'database'"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 25, max 100"`
}

// SearchOutput is the output schema for notion_search.
type SearchOutput struct {
	Results    []SearchResult `json:"results"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Page is the flattened page shape notion_get_page and database queries
// return. Properties carries the raw Notion property payloads.
type Page struct {
	ID             string         `json:"id"`
	Title          string         `json:"title,omitempty"`
	URL            string         `json:"url,omitempty"`
	Archived       bool           `json:"archived"`
	CreatedTime    string         `json:"created_time,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// GetPageInput is the input schema for notion_get_page.
type GetPageInput struct {
	PageID string `json:"page_id" jsonschema:"the page id, with or without dashes"`
}

// QueryDatabaseInput is the input schema for notion_query_database.
type QueryDatabaseInput struct {
	DatabaseID  string `json:"database_id" jsonschema:"the database id"`
	PageSize    int    `json:"page_size,omitempty" jsonschema:"rows per page, default 25, max 100"`
	StartCursor string `json:"start_cursor,omitempty" jsonschema:"cursor from a previous response to continue paging"`
}

// QueryDatabaseOutput is the output schema for notion_query_database.
type QueryDatabaseOutput struct {
	Pages      []Page `json:"pages"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "notion_search",
		Description: "Search Notion pages and databases by title.",
	}, c.handleSearch)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "notion_get_page",
		Description: "Fetch a Notion page with its properties.",
	}, c.handleGetPage)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "notion_query_database",
		Description: "Query rows of a Notion database, with cursor paging.",
	}, c.handleQueryDatabase)

	return nil
}

func (c *Connector) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	req := &notionapi.SearchRequest{
		Query:    input.Query,
		PageSize: clampPageSize(input.Limit),
	}

	switch strings.ToLower(strings.TrimSpace(input.Filter)) {
	case "":
	case "page", "database":
		req.Filter = notionapi.SearchFilter{
			Value:    strings.ToLower(strings.TrimSpace(input.Filter)),
			Property: "object",
		}
	default:
		return nil, SearchOutput{}, errors.ValidationError(
			"filter must be 'page' or 'database'", nil)
	}

	resp, err := c.client.Search.Do(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, c.mapError("search", err)
	}

	out := SearchOutput{
		Results:    make([]SearchResult, 0, len(resp.Results)),
		HasMore:    resp.HasMore,
		NextCursor: string(resp.NextCursor),
	}
	for _, obj := range resp.Results {
		out.Results = append(out.Results, flattenObject(obj))
	}

	return nil, out, nil
}

func (c *Connector) handleGetPage(ctx context.Context, _ *mcp.CallToolRequest, input GetPageInput) (*mcp.CallToolResult, Page, error) {
	if strings.TrimSpace(input.PageID) == "" {
		return nil, Page{}, errors.ValidationError("page_id is required", nil)
	}

	page, err := c.client.Page.Get(ctx, notionapi.PageID(input.PageID))
	if err != nil {
		return nil, Page{}, c.mapError("get page", err)
	}

	return nil, flattenPage(page), nil
}

func (c *Connector) handleQueryDatabase(ctx context.Context, _ *mcp.CallToolRequest, input QueryDatabaseInput) (*mcp.CallToolResult, QueryDatabaseOutput, error) {
	if strings.TrimSpace(input.DatabaseID) == "" {
		return nil, QueryDatabaseOutput{}, errors.ValidationError("database_id is required", nil)
	}

	resp, err := c.client.Database.Query(ctx, notionapi.DatabaseID(input.DatabaseID),
		&notionapi.DatabaseQueryRequest{
			PageSize:    clampPageSize(input.PageSize),
			StartCursor: notionapi.Cursor(input.StartCursor),
		})
	if err != nil {
		return nil, QueryDatabaseOutput{}, c.mapError("query database", err)
	}

	out := QueryDatabaseOutput{
		Pages:      make([]Page, 0, len(resp.Results)),
		HasMore:    resp.HasMore,
		NextCursor: string(resp.NextCursor),
	}
	for i := range resp.Results {
		out.Pages = append(out.Pages, flattenPage(&resp.Results[i]))
	}

	return nil, out, nil
}

func clampPageSize(n int) int {
	if n <= 0 {
		return 25
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// flattenObject shapes one search hit. Pages and databases carry their
// titles differently; anything else keeps just id and object type.
func flattenObject(obj notionapi.Object) SearchResult {
	switch v := obj.(type) {
	case *notionapi.Page:
		return SearchResult{
			ID:         v.ID.String(),
			Object:     string(v.Object),
			Title:      pageTitle(v),
			URL:        v.URL,
			LastEdited: formatTime(v.LastEditedTime),
		}
	case *notionapi.Database:
		return SearchResult{
			ID:         v.ID.String(),
			Object:     string(v.Object),
			Title:      plainText(v.Title),
			URL:        v.URL,
			LastEdited: formatTime(v.LastEditedTime),
		}
	default:
		return SearchResult{Object: string(obj.GetObject())}
	}
}

func flattenPage(p *notionapi.Page) Page {
	return Page{
		ID:             p.ID.String(),
		Title:          pageTitle(p),
		URL:            p.URL,
		Archived:       p.Archived,
		CreatedTime:    formatTime(p.CreatedTime),
		LastEditedTime: formatTime(p.LastEditedTime),
		Properties:     propertiesToMap(p.Properties),
	}
}

// propertiesToMap round-trips typed property values into plain JSON maps so
// tool outputs stay schema-friendly.
func propertiesToMap(props notionapi.Properties) map[string]any {
	if len(props) == 0 {
		return nil
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
