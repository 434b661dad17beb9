package feed

import (
	"context"
	"time"
)

// Kind names one class of GitHub activity. It doubles as the key under
// which the state store keeps that class's watermark.
type Kind string

const (
	KindCommit      Kind = "commit"
	KindIssue       Kind = "issue"
	KindPullRequest Kind = "pull_request"
)

// Item is one unit of activity as returned by a Source. Items are
// immutable once fetched; only their rendered fragments and the
// watermark survive a run.
type Item struct {
	Kind       Kind
	Time       time.Time
	Title      string
	Repository string
	URL        string
	ID         string
	Body       string
	State      string
}

// Source produces candidate items for a user, most recent first.
// Implementations return up to pageSize candidates per call and do not
// apply any watermark filtering; that is the Fetcher's job.
type Source interface {
	Name() string
	FetchCommits(ctx context.Context, user string, pageSize int) ([]Item, error)
	FetchIssues(ctx context.Context, user string, pageSize int) ([]Item, error)
	FetchPullRequests(ctx context.Context, user string, pageSize int) ([]Item, error)
	HealthCheck(ctx context.Context) error
}
