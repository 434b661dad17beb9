package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.GitHub.PageSize != 20 || cfg.GitHub.MaxItems != 3 {
		t.Fatalf("fetch defaults: %+v", cfg.GitHub)
	}
	if cfg.Paths.QuotesDir != "static/text" {
		t.Fatalf("quotes dir default: %q", cfg.Paths.QuotesDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("GITHUB_USERNAME", "")
	t.Setenv("IMGBB_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "ghbulletin.yaml")
	yaml := `
github:
  username: pawtals
  page_size: 50
imgbb:
  api_key: file-key
paths:
  base_dir: ` + dir + `
  quotes_dir: quotes
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHub.Username != "pawtals" || cfg.GitHub.PageSize != 50 {
		t.Fatalf("github config: %+v", cfg.GitHub)
	}
	if cfg.Imgbb.APIKey != "file-key" {
		t.Fatalf("imgbb key: %q", cfg.Imgbb.APIKey)
	}
	if cfg.Paths.QuotesDir != filepath.Join(dir, "quotes") {
		t.Fatalf("quotes dir not resolved against base: %q", cfg.Paths.QuotesDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ghbulletin.yaml")
	os.WriteFile(path, []byte("github:\n  username: from-file\n"), 0o644)

	t.Setenv("GITHUB_USERNAME", "from-env")
	t.Setenv("IMGBB_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHub.Username != "from-env" {
		t.Fatalf("env should override file: %q", cfg.GitHub.Username)
	}
	if cfg.Imgbb.APIKey != "env-key" {
		t.Fatalf("imgbb key from env: %q", cfg.Imgbb.APIKey)
	}
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.GitHub.PageSize != 20 {
		t.Fatalf("defaults not applied: %+v", cfg.GitHub)
	}
}

func TestValidateRequiresUsername(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "username") {
		t.Fatalf("expected username error, got %v", err)
	}

	cfg.GitHub.Username = "pawtals"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
