package bulletin

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pawtals/ghbulletin/internal/feed"
	"github.com/pawtals/ghbulletin/internal/markdown"
	"github.com/pawtals/ghbulletin/internal/state"
)

type RunOptions struct {
	Title string
	// DryRun stops short of the publish call and leaves the watermarks
	// untouched, so the next real run still covers this window.
	DryRun bool
}

type RunResult struct {
	Markdown string
	HTML     string
	Record   state.RunRecord
}

// Run executes one bulletin cycle. Stages run sequentially; a failed
// activity kind is logged and skipped while sibling kinds keep their
// fragments. Watermarks advance only after a successful publish.
func (app *Application) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	user := app.Config.GitHub.Username
	startedAt := time.Now().UTC()

	record := state.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		User:      user,
		Title:     opts.Title,
	}

	type kindFetch struct {
		kind  feed.Kind
		fetch func(context.Context, string) ([]feed.Item, error)
		count *int
	}
	fetches := []kindFetch{
		{feed.KindCommit, app.Fetcher.FetchCommits, &record.Commits},
		{feed.KindIssue, app.Fetcher.FetchIssues, &record.Issues},
		{feed.KindPullRequest, app.Fetcher.FetchPullRequests, &record.PullRequests},
	}

	header := app.Templates.Parse(app.readStatic(app.Config.Paths.HeaderFile))
	footer := app.Templates.Parse(app.readStatic(app.Config.Paths.FooterFile))
	asm := markdown.NewAssembler(header, footer)

	fetched := make(map[feed.Kind]bool)
	failures := 0
	for _, kf := range fetches {
		items, err := kf.fetch(ctx, user)
		if err != nil {
			app.Logger.Error("activity fetch failed, kind skipped", "kind", string(kf.kind), "error", err)
			failures++
			continue
		}
		fetched[kf.kind] = true
		*kf.count = len(items)
		for _, line := range feed.Fragments(user, kf.kind, items) {
			asm.AddFragment(line)
		}
	}
	if failures == len(fetches) {
		return nil, fmt.Errorf("all activity fetches failed for %s", user)
	}

	raw := asm.Render()
	if app.Rehoster != nil {
		rehosted, uploaded := app.Rehoster.ProcessDocument(ctx, raw)
		asm.SetRehosted(rehosted)
		record.Uploaded = len(uploaded)
	}

	final := asm.Render()
	html, err := markdown.ToHTML(final)
	if err != nil {
		return nil, fmt.Errorf("render bulletin html: %w", err)
	}

	result := &RunResult{Markdown: final, HTML: html}

	if !opts.DryRun {
		if err := app.Publisher.PostBulletin(ctx, opts.Title, html); err != nil {
			return nil, fmt.Errorf("publish bulletin: %w", err)
		}
		record.Published = true
		app.Logger.Info("bulletin published", "title", opts.Title)

		for kind := range fetched {
			if err := app.Store.SetWatermark(string(kind), startedAt); err != nil {
				app.Logger.Error("failed to advance watermark", "kind", string(kind), "error", err)
			}
		}
	}

	if err := app.Store.AppendRun(record); err != nil {
		app.Logger.Error("failed to record run", "error", err)
	}

	result.Record = record
	return result, nil
}

// readStatic loads an optional static content file. A missing file is
// an empty block, not an error.
func (app *Application) readStatic(path string) string {
	if path == "" {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		app.Logger.Warn("static content file unavailable", "path", path, "error", err)
		return ""
	}
	return string(raw)
}
