package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config carries every directory root and credential the pipeline
// needs. Nothing in the pipeline derives paths from the process
// working directory on its own; it all flows from here.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Imgbb  ImgbbConfig  `mapstructure:"imgbb"`
	Paths  PathsConfig  `mapstructure:"paths"`
}

type GitHubConfig struct {
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	PageSize int    `mapstructure:"page_size"`
	MaxItems int    `mapstructure:"max_items"`
}

type ImgbbConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Expiration in seconds; zero keeps uploads forever.
	Expiration int `mapstructure:"expiration"`
}

type PathsConfig struct {
	// BaseDir anchors every relative path below, including relative
	// image paths found in the document.
	BaseDir     string `mapstructure:"base_dir"`
	QuotesDir   string `mapstructure:"quotes_dir"`
	ImagesDir   string `mapstructure:"images_dir"`
	HeaderFile  string `mapstructure:"header_file"`
	FooterFile  string `mapstructure:"footer_file"`
	SessionFile string `mapstructure:"session_file"`
	StateFile   string `mapstructure:"state_file"`
	ExportDir   string `mapstructure:"export_dir"`
}

func Default() *Config {
	cwd, _ := os.Getwd()
	return &Config{
		GitHub: GitHubConfig{
			PageSize: 20,
			MaxItems: 3,
		},
		Paths: PathsConfig{
			BaseDir:     cwd,
			QuotesDir:   "static/text",
			ImagesDir:   "static/images",
			HeaderFile:  "static/header.md",
			FooterFile:  "static/footer.md",
			SessionFile: "sessions/auth.txt",
			StateFile:   "data/state.json",
			ExportDir:   "reports",
		},
	}
}

// Load builds the configuration: defaults, then the YAML config file
// at path (if it exists), then environment variables on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v := viper.New()
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := v.Unmarshal(cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GITHUB_USERNAME"); v != "" {
		cfg.GitHub.Username = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("IMGBB_API_KEY"); v != "" {
		cfg.Imgbb.APIKey = v
	}
	if v := os.Getenv("IMGBB_EXPIRATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Imgbb.Expiration = n
		}
	}
	if v := os.Getenv("BULLETIN_STATE_FILE"); v != "" {
		cfg.Paths.StateFile = v
	}
	if v := os.Getenv("BULLETIN_SESSION_FILE"); v != "" {
		cfg.Paths.SessionFile = v
	}
}

// normalize resolves every relative path against BaseDir.
func (c *Config) normalize() {
	base := c.Paths.BaseDir
	if base == "" {
		base, _ = os.Getwd()
		c.Paths.BaseDir = base
	}
	for _, p := range []*string{
		&c.Paths.QuotesDir,
		&c.Paths.ImagesDir,
		&c.Paths.HeaderFile,
		&c.Paths.FooterFile,
		&c.Paths.SessionFile,
		&c.Paths.StateFile,
		&c.Paths.ExportDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func (c *Config) Validate() error {
	if c.GitHub.Username == "" {
		return fmt.Errorf("github username is required (set github.username or GITHUB_USERNAME)")
	}
	if c.GitHub.PageSize < 0 || c.GitHub.MaxItems < 0 {
		return fmt.Errorf("page size and max items must not be negative")
	}
	return nil
}
