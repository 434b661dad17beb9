package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultLookback is how far back the watermark reaches when no state
// has been persisted yet. First runs report the last week of activity.
const DefaultLookback = 7 * 24 * time.Hour

// RunRecord summarizes one completed pipeline run. Records accumulate
// in the state file and feed the export subcommand.
type RunRecord struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	User         string    `json:"user"`
	Title        string    `json:"title"`
	Commits      int       `json:"commits"`
	Issues       int       `json:"issues"`
	PullRequests int       `json:"pull_requests"`
	Uploaded     int       `json:"uploaded"`
	Published    bool      `json:"published"`
}

type storeData struct {
	// LastQuery maps an activity kind to the RFC 3339 instant of the
	// last successful run covering it.
	LastQuery map[string]string `json:"last_query"`
	// HostedImages maps a local image path to the URL it was rehosted
	// at, so re-running the pipeline never re-uploads the same file.
	HostedImages map[string]string `json:"hosted_images"`
	Runs         []RunRecord       `json:"runs"`
}

// Store is the durable per-run state: watermarks, the path→hosted-URL
// rehost cache, and run history. It is a single small JSON document
// guarded by a mutex and rewritten on every mutation.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	data storeData
}

// Open loads the state file at path, creating parent directories as
// needed. A missing or unreadable file is not an error: the store
// starts empty and watermarks fall back to their default, so first
// runs and corrupted state both degrade gracefully.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
		data: storeData{
			LastQuery:    make(map[string]string),
			HostedImages: make(map[string]string),
		},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		logger.Warn("state file unreadable, starting fresh", "path", path, "error", err)
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("state file malformed, starting fresh", "path", path, "error", err)
		s.data = storeData{
			LastQuery:    make(map[string]string),
			HostedImages: make(map[string]string),
		}
		return s, nil
	}
	if s.data.LastQuery == nil {
		s.data.LastQuery = make(map[string]string)
	}
	if s.data.HostedImages == nil {
		s.data.HostedImages = make(map[string]string)
	}
	return s, nil
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// Watermark returns the freshness boundary for kind. Items must be
// strictly newer than this instant to count as new. Absent or
// unparseable state yields now minus DefaultLookback, never an error.
func (s *Store) Watermark(kind string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data.LastQuery[kind]
	if !ok {
		return time.Now().UTC().Add(-DefaultLookback)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.logger.Warn("watermark unparseable, using default", "kind", kind, "value", raw)
		return time.Now().UTC().Add(-DefaultLookback)
	}
	return t
}

// SetWatermark persists the freshness boundary for kind. Callers write
// it only after the run completed successfully.
func (s *Store) SetWatermark(kind string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LastQuery[kind] = t.UTC().Format(time.RFC3339)
	if err := s.save(); err != nil {
		return fmt.Errorf("persist watermark for %s: %w", kind, err)
	}
	return nil
}

// HostedURL looks up the rehost cache for a local image path.
func (s *Store) HostedURL(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url, ok := s.data.HostedImages[path]
	return url, ok
}

// RecordHostedURL remembers that path was uploaded and now lives at url.
func (s *Store) RecordHostedURL(path, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.HostedImages[path] = url
	if err := s.save(); err != nil {
		return fmt.Errorf("persist hosted url for %s: %w", path, err)
	}
	return nil
}

// AppendRun adds a run record to the history.
func (s *Store) AppendRun(record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Runs = append(s.data.Runs, record)
	if err := s.save(); err != nil {
		return fmt.Errorf("persist run record: %w", err)
	}
	return nil
}

// Runs returns a copy of the run history, oldest first.
func (s *Store) Runs() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RunRecord, len(s.data.Runs))
	copy(out, s.data.Runs)
	return out
}
