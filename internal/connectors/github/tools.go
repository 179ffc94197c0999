package github

import (
	"context"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/errors"
)

// GitHub's search and list endpoints page at 100 items max.
const maxPerPage = 100

// Repository is the flattened repository shape github_get_repository returns.
type Repository struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description,omitempty"`
	DefaultBranch string   `json:"default_branch,omitempty"`
	Language      string   `json:"language,omitempty"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	OpenIssues    int      `json:"open_issues"`
	Private       bool     `json:"private"`
	Topics        []string `json:"topics,omitempty"`
	HTMLURL       string   `json:"html_url,omitempty"`
}

// Issue is the flattened issue shape search results return.
type Issue struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	State         string   `json:"state"`
	Author        string   `json:"author,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	Comments      int      `json:"comments"`
	CreatedAt     string   `json:"created_at,omitempty"`
	HTMLURL       string   `json:"html_url,omitempty"`
	IsPullRequest bool     `json:"is_pull_request"`
}

// PullRequest is the flattened pull request shape list results return.
type PullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Author    string `json:"author,omitempty"`
	Draft     bool   `json:"draft"`
	BaseRef   string `json:"base_ref,omitempty"`
	HeadRef   string `json:"head_ref,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

// GetRepositoryInput is the input schema for github_get_repository.
type GetRepositoryInput struct {
	Owner string `json:"owner" jsonschema:"repository owner, a user or organization login"`
	Repo  string `json:"repo" jsonschema:"repository name without the owner prefix"`
}

// SearchIssuesInput is the input schema for github_search_issues.
type SearchIssuesInput struct {
	Query string `json:"query" jsonschema:"GitHub issue search query, e.g. 'repo:golang/go is:open label:bug'"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of issues to return, default 30, max 100"`
}

// SearchIssuesOutput is the output schema for github_search_issues.
type SearchIssuesOutput struct {
	Issues     []Issue `json:"issues"`
	TotalCount int     `json:"total_count"`
}

// ListPullRequestsInput is the input schema for github_list_pull_requests.
type ListPullRequestsInput struct {
	Owner string `json:"owner" jsonschema:"repository owner, a user or organization login"`
	Repo  string `json:"repo" jsonschema:"repository name without the owner prefix"`
	State string `json:"state,omitempty" jsonschema:"filter by state: open, closed, or all, default open"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of pull requests to return, default 30, max 100"`
}

// ListPullRequestsOutput is the output schema for github_list_pull_requests.
type ListPullRequestsOutput struct {
	PullRequests []PullRequest `json:"pull_requests"`
	Count        int           `json:"count"`
}

// RegisterTools implements connector.Connector.
func (c *Connector) RegisterTools(reg *connector.Registration) error {
	connector.AddTool(reg, &mcp.Tool{
		Name:        "github_get_repository",
		Description: "Fetch a repository's metadata: description, default branch, stars, open issue count.",
	}, c.handleGetRepository)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "github_search_issues",
		Description: "Search issues and pull requests with GitHub's search syntax.",
	}, c.handleSearchIssues)

	connector.AddTool(reg, &mcp.Tool{
		Name:        "github_list_pull_requests",
		Description: "List a repository's pull requests, newest first.",
	}, c.handleListPullRequests)

	return nil
}

func (c *Connector) handleGetRepository(ctx context.Context, _ *mcp.CallToolRequest, input GetRepositoryInput) (*mcp.CallToolResult, Repository, error) {
	if strings.TrimSpace(input.Owner) == "" || strings.TrimSpace(input.Repo) == "" {
		return nil, Repository{}, errors.ValidationError("owner and repo are required", nil)
	}

	repo, _, err := c.client.Repositories.Get(ctx, input.Owner, input.Repo)
	if err != nil {
		return nil, Repository{}, c.mapError("get repository", err)
	}

	return nil, flattenRepository(repo), nil
}

func (c *Connector) handleSearchIssues(ctx context.Context, _ *mcp.CallToolRequest, input SearchIssuesInput) (*mcp.CallToolResult, SearchIssuesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchIssuesOutput{}, errors.ValidationError("query must not be empty", nil)
	}

	result, _, err := c.client.Search.Issues(ctx, input.Query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: clampLimit(input.Limit)},
	})
	if err != nil {
		return nil, SearchIssuesOutput{}, c.mapError("search issues", err)
	}

	out := SearchIssuesOutput{
		Issues:     make([]Issue, 0, len(result.Issues)),
		TotalCount: result.GetTotal(),
	}
	for _, issue := range result.Issues {
		out.Issues = append(out.Issues, flattenIssue(issue))
	}

	return nil, out, nil
}

var validPRStates = map[string]bool{"open": true, "closed": true, "all": true}

func (c *Connector) handleListPullRequests(ctx context.Context, _ *mcp.CallToolRequest, input ListPullRequestsInput) (*mcp.CallToolResult, ListPullRequestsOutput, error) {
	if strings.TrimSpace(input.Owner) == "" || strings.TrimSpace(input.Repo) == "" {
		return nil, ListPullRequestsOutput{}, errors.ValidationError("owner and repo are required", nil)
	}

	state := strings.ToLower(strings.TrimSpace(input.State))
	if state == "" {
		state = "open"
	}
	if !validPRStates[state] {
		return nil, ListPullRequestsOutput{}, errors.ValidationError(
			"state must be open, closed, or all", nil)
	}

	prs, _, err := c.client.PullRequests.List(ctx, input.Owner, input.Repo, &gh.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: clampLimit(input.Limit)},
	})
	if err != nil {
		return nil, ListPullRequestsOutput{}, c.mapError("list pull requests", err)
	}

	out := ListPullRequestsOutput{
		PullRequests: make([]PullRequest, 0, len(prs)),
		Count:        len(prs),
	}
	for _, pr := range prs {
		out.PullRequests = append(out.PullRequests, flattenPullRequest(pr))
	}

	return nil, out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 30
	}
	if limit > maxPerPage {
		return maxPerPage
	}
	return limit
}

func flattenRepository(r *gh.Repository) Repository {
	return Repository{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Private:       r.GetPrivate(),
		Topics:        r.Topics,
		HTMLURL:       r.GetHTMLURL(),
	}
}

func flattenIssue(i *gh.Issue) Issue {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.GetName())
	}
	return Issue{
		Number:        i.GetNumber(),
		Title:         i.GetTitle(),
		State:         i.GetState(),
		Author:        i.GetUser().GetLogin(),
		Labels:        labels,
		Comments:      i.GetComments(),
		CreatedAt:     formatTimestamp(i.CreatedAt),
		HTMLURL:       i.GetHTMLURL(),
		IsPullRequest: i.IsPullRequest(),
	}
}

func flattenPullRequest(pr *gh.PullRequest) PullRequest {
	return PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		Author:    pr.GetUser().GetLogin(),
		Draft:     pr.GetDraft(),
		BaseRef:   pr.GetBase().GetRef(),
		HeadRef:   pr.GetHead().GetRef(),
		CreatedAt: formatTimestamp(pr.CreatedAt),
		HTMLURL:   pr.GetHTMLURL(),
	}
}

func formatTimestamp(ts *gh.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.Format(time.RFC3339)
}
