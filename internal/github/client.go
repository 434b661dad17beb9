package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.github.com"

// commitAccept opts in to the commit search media type; without it the
// /search/commits endpoint rejects the request.
const commitAccept = "application/vnd.github.cloak-preview+json"

// Client talks to the GitHub search API. Search has its own rate
// bucket (10 requests per minute unauthenticated, 30 with a token), so
// every call waits on the limiter first.
type Client struct {
	BaseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(token string) *Client {
	limit := rate.Every(6 * time.Second) // 10/min
	if token != "" {
		limit = rate.Every(2 * time.Second) // 30/min
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(limit, 3),
	}
}

type CommitResult struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

type commitSearchResponse struct {
	TotalCount int            `json:"total_count"`
	Items      []CommitResult `json:"items"`
}

type IssueResult struct {
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	State         string    `json:"state"`
	HTMLURL       string    `json:"html_url"`
	CreatedAt     time.Time `json:"created_at"`
	RepositoryURL string    `json:"repository_url"`
}

type issueSearchResponse struct {
	TotalCount int           `json:"total_count"`
	Items      []IssueResult `json:"items"`
}

// SearchCommits returns commits authored by user, newest first.
func (c *Client) SearchCommits(ctx context.Context, user string, perPage int) ([]CommitResult, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("author:%s", user))
	q.Set("sort", "author-date")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprintf("%d", perPage))

	var result commitSearchResponse
	if err := c.get(ctx, "/search/commits", q, commitAccept, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// SearchIssues returns issues authored by user, newest first.
func (c *Client) SearchIssues(ctx context.Context, user string, perPage int) ([]IssueResult, error) {
	return c.searchIssues(ctx, fmt.Sprintf("author:%s type:issue", user), perPage)
}

// SearchPullRequests returns pull requests authored by user, newest first.
func (c *Client) SearchPullRequests(ctx context.Context, user string, perPage int) ([]IssueResult, error) {
	return c.searchIssues(ctx, fmt.Sprintf("author:%s type:pr", user), perPage)
}

func (c *Client) searchIssues(ctx context.Context, query string, perPage int) ([]IssueResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "created")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprintf("%d", perPage))

	var result issueSearchResponse
	if err := c.get(ctx, "/search/issues", q, "", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// HealthCheck verifies the API is reachable and the token (if any) is
// accepted. /rate_limit is free: it does not count against any bucket.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/rate_limit", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub health check failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, accept string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
