package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawtals/ghbulletin/internal/feed"
)

// Source adapts the GitHub search client to the feed.Source interface.
type Source struct {
	Client *Client
}

func NewSource(token string) *Source {
	return &Source{Client: NewClient(token)}
}

var _ feed.Source = (*Source)(nil)

func (s *Source) Name() string {
	return "GitHub"
}

func (s *Source) HealthCheck(ctx context.Context) error {
	return s.Client.HealthCheck(ctx)
}

func (s *Source) FetchCommits(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	results, err := s.Client.SearchCommits(ctx, user, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]feed.Item, 0, len(results))
	for _, r := range results {
		items = append(items, feed.Item{
			Kind:       feed.KindCommit,
			Time:       r.Commit.Author.Date,
			Title:      r.Commit.Message,
			Repository: r.Repository.FullName,
			URL:        r.HTMLURL,
			ID:         r.SHA,
		})
	}
	return items, nil
}

func (s *Source) FetchIssues(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	results, err := s.Client.SearchIssues(ctx, user, pageSize)
	if err != nil {
		return nil, err
	}
	return issueItems(feed.KindIssue, results), nil
}

func (s *Source) FetchPullRequests(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	results, err := s.Client.SearchPullRequests(ctx, user, pageSize)
	if err != nil {
		return nil, err
	}
	return issueItems(feed.KindPullRequest, results), nil
}

func issueItems(kind feed.Kind, results []IssueResult) []feed.Item {
	items := make([]feed.Item, 0, len(results))
	for _, r := range results {
		items = append(items, feed.Item{
			Kind:       kind,
			Time:       r.CreatedAt,
			Title:      r.Title,
			Repository: repoFromAPIURL(r.RepositoryURL),
			URL:        r.HTMLURL,
			ID:         fmt.Sprintf("%d", r.Number),
			Body:       r.Body,
			State:      r.State,
		})
	}
	return items
}

// repoFromAPIURL extracts "owner/name" from an API repository URL like
// https://api.github.com/repos/owner/name.
func repoFromAPIURL(apiURL string) string {
	const marker = "/repos/"
	idx := strings.Index(apiURL, marker)
	if idx < 0 {
		return apiURL
	}
	return apiURL[idx+len(marker):]
}
