package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
	"github.com/patchbaylabs/patchbay/internal/logging"
)

// rewriteTransport redirects every request to the test server. notionapi
// pins its production base URL, so tests swap the transport instead.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newConnector(t *testing.T, srvURL string) *Connector {
	t.Helper()
	target, err := url.Parse(srvURL)
	require.NoError(t, err)

	c, err := New(connector.Settings{
		Credentials: map[string]string{"api_token": "notion-test"},
		HTTPClient:  &http.Client{Transport: rewriteTransport{target: target}},
		Logger:      logging.Nop(),
	})
	require.NoError(t, err)
	return c
}

const pageJSON = `{
	"object":"page","id":"59833787-2cf9-4fdf-8782-e53db20768a5",
	"created_time":"2024-05-01T10:00:00Z","last_edited_time":"2024-05-02T10:00:00Z",
	"archived":false,
	"properties":{"Name":{"id":"title","type":"title","title":[
		{"type":"text","plain_text":"Q3 Roadmap","text":{"content":"Q3 Roadmap"}}
	]}},
	"url":"https://www.notion.so/Q3-Roadmap-59833787"
}`

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(connector.Settings{Logger: logging.Nop()})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCredentialMissing, errors.GetCode(err))
}

func TestSearch_FlattensPagesAndDatabases(t *testing.T) {
	// Given: a search returning one page and one database
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer notion-test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Notion-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"object":"list","results":[` + pageJSON + `,
			{"object":"database","id":"d9824bdc-8445-4327-be8b-5b47500af6ce",
			 "last_edited_time":"2024-04-01T09:00:00Z",
			 "title":[{"type":"text","plain_text":"Tasks"}],
			 "url":"https://www.notion.so/d9824bdc"}
		],"has_more":true,"next_cursor":"cur-2"}`))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	// When: searching
	_, out, err := c.handleSearch(context.Background(), nil, SearchInput{Query: "roadmap"})

	// Then: both objects flatten with their titles, paging info survives
	require.NoError(t, err)
	assert.Equal(t, "roadmap", gotBody["query"])
	assert.Equal(t, float64(25), gotBody["page_size"])
	require.Len(t, out.Results, 2)
	assert.Equal(t, "page", out.Results[0].Object)
	assert.Equal(t, "Q3 Roadmap", out.Results[0].Title)
	assert.Equal(t, "database", out.Results[1].Object)
	assert.Equal(t, "Tasks", out.Results[1].Title)
	assert.True(t, out.HasMore)
	assert.Equal(t, "cur-2", out.NextCursor)
}

func TestSearch_SendsObjectFilter(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"object":"list","results":[],"has_more":false}`))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	_, _, err := c.handleSearch(context.Background(), nil, SearchInput{Filter: "database"})

	require.NoError(t, err)
	filter, ok := gotBody["filter"].(map[string]any)
	require.True(t, ok, "filter should be sent")
	assert.Equal(t, "database", filter["value"])
	assert.Equal(t, "object", filter["property"])
}

func TestSearch_RejectsUnknownFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	_, _, err := c.handleSearch(context.Background(), nil, SearchInput{Filter: "block"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestGetPage_FlattensTitleAndProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/pages/59833787-2cf9-4fdf-8782-e53db20768a5", r.URL.Path)
		_, _ = w.Write([]byte(pageJSON))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	_, page, err := c.handleGetPage(context.Background(), nil, GetPageInput{
		PageID: "59833787-2cf9-4fdf-8782-e53db20768a5",
	})

	require.NoError(t, err)
	assert.Equal(t, "59833787-2cf9-4fdf-8782-e53db20768a5", page.ID)
	assert.Equal(t, "Q3 Roadmap", page.Title)
	assert.Equal(t, "2024-05-01T10:00:00Z", page.CreatedTime)
	require.Contains(t, page.Properties, "Name")
}

func TestGetPage_RequiresID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	_, _, err := c.handleGetPage(context.Background(), nil, GetPageInput{PageID: " "})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestGetPage_APIErrorKeepsNotionCode(t *testing.T) {
	// Given: Notion rejecting the page id
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	// When: fetching
	_, _, err := c.handleGetPage(context.Background(), nil, GetPageInput{PageID: "missing"})

	// Then: the upstream failure carries Notion's error code
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamStatus, errors.GetCode(err))
	var be *errors.BayError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "object_not_found", be.Details["notion_code"])
}

func TestQueryDatabase_PagesThrough(t *testing.T) {
	// Given: a database query returning one row and a cursor
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/d9824bdc/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"object":"list","results":[` + pageJSON + `],"has_more":true,"next_cursor":"cur-9"}`))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	// When: querying with an explicit cursor
	_, out, err := c.handleQueryDatabase(context.Background(), nil, QueryDatabaseInput{
		DatabaseID:  "d9824bdc",
		PageSize:    10,
		StartCursor: "cur-8",
	})

	// Then: paging params were sent and the row flattens
	require.NoError(t, err)
	assert.Equal(t, float64(10), gotBody["page_size"])
	assert.Equal(t, "cur-8", gotBody["start_cursor"])
	require.Len(t, out.Pages, 1)
	assert.Equal(t, "Q3 Roadmap", out.Pages[0].Title)
	assert.True(t, out.HasMore)
	assert.Equal(t, "cur-9", out.NextCursor)
}

func TestQueryDatabase_RequiresID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	_, _, err := c.handleQueryDatabase(context.Background(), nil, QueryDatabaseInput{})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestValidate_FetchesBotUser(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"object":"user","id":"b0b","type":"bot","name":"patchbay"}`))
	}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	require.NoError(t, c.Validate(context.Background()))
	assert.Equal(t, "/v1/users/me", gotPath)
}

func TestMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := newConnector(t, srv.URL)

	md := c.Metadata()
	assert.Equal(t, "notion", md.Name)
	assert.NotEmpty(t, md.Description)
	require.Len(t, c.Credentials(), 1)
	assert.Equal(t, "NOTION_API_TOKEN", c.Credentials()[0].EnvVar)
}
