// Package bulletin wires the pipeline together and drives a single run:
// fetch activity, parse templates, assemble, rehost images, render, and
// publish.
package bulletin

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pawtals/ghbulletin/internal/config"
	"github.com/pawtals/ghbulletin/internal/feed"
	"github.com/pawtals/ghbulletin/internal/github"
	"github.com/pawtals/ghbulletin/internal/imgbb"
	"github.com/pawtals/ghbulletin/internal/spacehey"
	"github.com/pawtals/ghbulletin/internal/state"
	"github.com/pawtals/ghbulletin/internal/template"
)

type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Fetcher   *feed.Fetcher
	Templates *template.Parser
	Rehoster  *imgbb.Pipeline
	Publisher *spacehey.Client
	Store     *state.Store
}

func New(cfg *config.Config) (*Application, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	store, err := state.Open(cfg.Paths.StateFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	source := github.NewSource(cfg.GitHub.Token)
	fetcher := feed.NewFetcher(source, store, logger)
	if cfg.GitHub.PageSize > 0 {
		fetcher.PageSize = cfg.GitHub.PageSize
	}
	if cfg.GitHub.MaxItems > 0 {
		fetcher.MaxItems = cfg.GitHub.MaxItems
	}

	parser := template.NewParser(cfg.Paths.QuotesDir, cfg.Paths.ImagesDir, logger)

	var rehoster *imgbb.Pipeline
	if cfg.Imgbb.APIKey != "" {
		uploader := imgbb.NewClient(cfg.Imgbb.APIKey, cfg.Imgbb.Expiration)
		rehoster = imgbb.NewPipeline(uploader, cfg.Paths.BaseDir, store, logger)
		logger.Info("image rehosting enabled")
	} else {
		logger.Warn("no imgbb api key configured, local images will not be rehosted")
	}

	creds := &spacehey.FileCredentials{Path: cfg.Paths.SessionFile}
	publisher := spacehey.NewClient(creds)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Fetcher:   fetcher,
		Templates: parser,
		Rehoster:  rehoster,
		Publisher: publisher,
		Store:     store,
	}, nil
}
