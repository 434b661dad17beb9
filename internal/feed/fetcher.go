package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultPageSize is how many candidates are requested from the
	// source per fetch. The GitHub search API caps per_page at 100.
	DefaultPageSize = 20
	// MaxPageSize is the upstream per_page ceiling.
	MaxPageSize = 100
	// DefaultMaxItems is how many accepted items end up in the bulletin
	// per activity kind.
	DefaultMaxItems = 3
)

// WatermarkSource yields the "last successful fetch" boundary for an
// activity kind. Items must be strictly newer than the watermark to be
// included; the comparison is exclusive everywhere.
type WatermarkSource interface {
	Watermark(kind string) time.Time
}

// Fetcher pulls fresh activity from a Source, gated by the watermark
// store and truncated to MaxItems per kind.
type Fetcher struct {
	Source   Source
	Marks    WatermarkSource
	PageSize int
	MaxItems int
	Logger   *slog.Logger
}

func NewFetcher(source Source, marks WatermarkSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Source:   source,
		Marks:    marks,
		PageSize: DefaultPageSize,
		MaxItems: DefaultMaxItems,
		Logger:   logger,
	}
}

func (f *Fetcher) pageSize() int {
	switch {
	case f.PageSize <= 0:
		return DefaultPageSize
	case f.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return f.PageSize
	}
}

func (f *Fetcher) maxItems() int {
	if f.MaxItems <= 0 {
		return DefaultMaxItems
	}
	return f.MaxItems
}

// FetchCommits returns the user's commits newer than the commit
// watermark, at most MaxItems of them, in the source's descending
// order.
func (f *Fetcher) FetchCommits(ctx context.Context, user string) ([]Item, error) {
	return f.fetch(ctx, user, KindCommit, f.Source.FetchCommits)
}

// FetchIssues is FetchCommits for issues authored by the user.
func (f *Fetcher) FetchIssues(ctx context.Context, user string) ([]Item, error) {
	return f.fetch(ctx, user, KindIssue, f.Source.FetchIssues)
}

// FetchPullRequests is FetchCommits for pull requests authored by the user.
func (f *Fetcher) FetchPullRequests(ctx context.Context, user string) ([]Item, error) {
	return f.fetch(ctx, user, KindPullRequest, f.Source.FetchPullRequests)
}

type fetchFunc func(ctx context.Context, user string, pageSize int) ([]Item, error)

func (f *Fetcher) fetch(ctx context.Context, user string, kind Kind, fn fetchFunc) ([]Item, error) {
	if user == "" {
		return nil, fmt.Errorf("fetch %s: user must not be empty", kind)
	}

	candidates, err := fn(ctx, user, f.pageSize())
	if err != nil {
		return nil, fmt.Errorf("fetch %s for %s: %w", kind, user, err)
	}

	mark := f.Marks.Watermark(string(kind))
	fresh := freshPrefix(candidates, mark, f.maxItems())

	f.Logger.Info("activity fetched",
		"kind", string(kind),
		"user", user,
		"candidates", len(candidates),
		"included", len(fresh),
		"watermark", mark.UTC().Format(time.RFC3339),
	)
	return fresh, nil
}

// freshPrefix walks candidates in order and keeps items strictly newer
// than mark. The feed is monotonically descending, so the first stale
// item terminates the scan rather than being skipped; anything after it
// is at least as old.
func freshPrefix(candidates []Item, mark time.Time, max int) []Item {
	var fresh []Item
	for _, item := range candidates {
		if !item.Time.After(mark) {
			break
		}
		fresh = append(fresh, item)
		if len(fresh) >= max {
			break
		}
	}
	return fresh
}
