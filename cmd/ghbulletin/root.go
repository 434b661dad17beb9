package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawtals/ghbulletin/internal/bulletin"
	"github.com/pawtals/ghbulletin/internal/config"
	"github.com/pawtals/ghbulletin/internal/report"
	"github.com/pawtals/ghbulletin/internal/spacehey"
)

var (
	configPath string
	username   string
	token      string
	title      string
	pageSize   int
	maxItems   int
	dryRun     bool
	exportDir  string
)

var rootCmd = &cobra.Command{
	Use:   "ghbulletin",
	Short: "Post your recent GitHub activity as a SpaceHey bulletin",
	Long: `ghbulletin aggregates your recent commits, issues, and pull requests
into Markdown, fills in the static header/footer templates, rehosts any
local images, and publishes the result as a bulletin.`,
	RunE: runPost,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the saved session cookie is still valid",
	RunE:  runCheck,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the bulletin run history to a spreadsheet",
	RunE:  runExport,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ghbulletin.yaml", "Path to the YAML config file")

	rootCmd.Flags().StringVarP(&username, "user", "u", "", "GitHub username to report on")
	rootCmd.Flags().StringVar(&token, "token", "", "GitHub API token (raises the search rate limit)")
	rootCmd.Flags().StringVarP(&title, "title", "t", "", "Bulletin title")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "Candidates requested per activity kind (default 20, max 100)")
	rootCmd.Flags().IntVar(&maxItems, "max-items", 0, "Items included per activity kind (default 3)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Assemble and print the bulletin without publishing")

	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "Output directory (overrides config)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if username != "" {
		cfg.GitHub.Username = username
	}
	if token != "" {
		cfg.GitHub.Token = token
	}
	if pageSize > 0 {
		cfg.GitHub.PageSize = pageSize
	}
	if maxItems > 0 {
		cfg.GitHub.MaxItems = maxItems
	}
	return cfg, nil
}

func runPost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := bulletin.New(cfg)
	if err != nil {
		return err
	}

	bulletinTitle := title
	if bulletinTitle == "" {
		bulletinTitle = fmt.Sprintf("%s's week in code", cfg.GitHub.Username)
	}

	bar := newSpinner("Assembling bulletin")
	result, err := app.Run(context.Background(), bulletin.RunOptions{
		Title:  bulletinTitle,
		DryRun: dryRun,
	})
	finishBar(bar)

	if err != nil {
		if errors.Is(err, spacehey.ErrUnauthorized) {
			return fmt.Errorf("%w\nrun the browser login flow again to refresh %s", err, cfg.Paths.SessionFile)
		}
		return err
	}

	if dryRun {
		fmt.Println(result.Markdown)
		fmt.Println("\n(dry run, nothing was published)")
		return nil
	}

	fmt.Printf("Published %q (%d commits, %d issues, %d pull requests, %d images rehosted)\n",
		bulletinTitle,
		result.Record.Commits,
		result.Record.Issues,
		result.Record.PullRequests,
		result.Record.Uploaded,
	)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := &spacehey.FileCredentials{Path: cfg.Paths.SessionFile}
	client := spacehey.NewClient(creds)

	if err := client.Check(context.Background()); err != nil {
		if errors.Is(err, spacehey.ErrUnauthorized) {
			return fmt.Errorf("%w\nrun the browser login flow again to refresh %s", err, cfg.Paths.SessionFile)
		}
		return err
	}

	fmt.Println("Session cookie is valid.")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := bulletin.New(cfg)
	if err != nil {
		return err
	}

	records := app.Store.Runs()
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	outDir := exportDir
	if outDir == "" {
		outDir = cfg.Paths.ExportDir
	}

	exporter := report.NewExcelExporter(outDir)
	path, err := exporter.Export(records)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d runs to %s\n", len(records), path)
	return nil
}
