package bulletin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pawtals/ghbulletin/internal/config"
	"github.com/pawtals/ghbulletin/internal/feed"
	"github.com/pawtals/ghbulletin/internal/spacehey"
	"github.com/pawtals/ghbulletin/internal/state"
	"github.com/pawtals/ghbulletin/internal/template"
)

type stubSource struct {
	commits []feed.Item
	issues  []feed.Item
	pulls   []feed.Item
	err     error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchCommits(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	return s.commits, s.err
}

func (s *stubSource) FetchIssues(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	return s.issues, s.err
}

func (s *stubSource) FetchPullRequests(ctx context.Context, user string, pageSize int) ([]feed.Item, error) {
	return s.pulls, s.err
}

func (s *stubSource) HealthCheck(ctx context.Context) error { return nil }

func testApp(t *testing.T, source feed.Source, publishURL string) *Application {
	t.Helper()
	dir := t.TempDir()

	header := filepath.Join(dir, "header.md")
	footer := filepath.Join(dir, "footer.md")
	if err := os.WriteFile(header, []byte("H"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(footer, []byte("F"), 0o644); err != nil {
		t.Fatal(err)
	}

	sessionFile := filepath.Join(dir, "auth.txt")
	if err := os.WriteFile(sessionFile, []byte("session=abc"), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := state.Open(filepath.Join(dir, "state.json"), nil)
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	publisher := spacehey.NewClient(&spacehey.FileCredentials{Path: sessionFile})
	if publishURL != "" {
		publisher.BaseURL = publishURL
	}

	cfg := config.Default()
	cfg.GitHub.Username = "pawtals"
	cfg.Paths.BaseDir = dir
	cfg.Paths.HeaderFile = header
	cfg.Paths.FooterFile = footer

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Fetcher:   feed.NewFetcher(source, store, logger),
		Templates: template.NewParser(filepath.Join(dir, "text"), filepath.Join(dir, "images"), logger),
		Publisher: publisher,
		Store:     store,
	}
}

func TestRunWithNoActivityRendersBareDocument(t *testing.T) {
	t.Parallel()
	app := testApp(t, &stubSource{}, "")

	result, err := app.Run(context.Background(), RunOptions{Title: "t", DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// No activity means no headings at all, just header and footer.
	if result.Markdown != "H\n\n\n\nF" {
		t.Fatalf("empty-activity document: got %q", result.Markdown)
	}
}

func TestRunPublishesAndAdvancesWatermarks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	now := time.Now().UTC()
	source := &stubSource{commits: []feed.Item{{
		Kind:       feed.KindCommit,
		Time:       now,
		Title:      "ship it",
		Repository: "pawtals/site",
		URL:        "https://github.com/pawtals/site/commit/abc",
	}}}

	app := testApp(t, source, server.URL)
	before := app.Store.Watermark(string(feed.KindCommit))

	result, err := app.Run(context.Background(), RunOptions{Title: "weekly"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Record.Published || result.Record.Commits != 1 {
		t.Fatalf("run record: %+v", result.Record)
	}

	after := app.Store.Watermark(string(feed.KindCommit))
	if !after.After(before) {
		t.Fatalf("watermark did not advance: before=%v after=%v", before, after)
	}

	runs := app.Store.Runs()
	if len(runs) != 1 || !runs[0].Published {
		t.Fatalf("run history: %+v", runs)
	}
}

func TestRunDryRunLeavesWatermarksAlone(t *testing.T) {
	t.Parallel()

	source := &stubSource{commits: []feed.Item{{
		Kind: feed.KindCommit,
		Time: time.Now().UTC(),
		URL:  "https://example.com",
	}}}
	app := testApp(t, source, "")

	before := app.Store.Watermark(string(feed.KindCommit))
	if _, err := app.Run(context.Background(), RunOptions{Title: "t", DryRun: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	after := app.Store.Watermark(string(feed.KindCommit))

	// Default watermarks are computed from "now", so allow jitter but
	// reject a persisted advance.
	if after.Sub(before) > time.Minute {
		t.Fatalf("dry run advanced the watermark: before=%v after=%v", before, after)
	}
}

func TestRunAbortsWhenAllFetchesFail(t *testing.T) {
	t.Parallel()

	app := testApp(t, &stubSource{err: errors.New("api down")}, "")
	if _, err := app.Run(context.Background(), RunOptions{Title: "t", DryRun: true}); err == nil {
		t.Fatal("expected error when every activity kind fails")
	}
}

func TestRunPublishFailurePropagatesUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	app := testApp(t, &stubSource{}, server.URL)
	_, err := app.Run(context.Background(), RunOptions{Title: "t"})
	if !errors.Is(err, spacehey.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRunHTMLRendering(t *testing.T) {
	t.Parallel()

	source := &stubSource{issues: []feed.Item{{
		Kind:       feed.KindIssue,
		Time:       time.Now().UTC(),
		Title:      "Add dark mode",
		Repository: "pawtals/site",
		URL:        "https://github.com/pawtals/site/issues/42",
	}}}
	app := testApp(t, source, "")

	result, err := app.Run(context.Background(), RunOptions{Title: "t", DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.HTML == "" || result.HTML == result.Markdown {
		t.Fatal("expected rendered HTML distinct from markdown")
	}
}
