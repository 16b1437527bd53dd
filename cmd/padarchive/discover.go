package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nethahussain/padarchive/internal/config"
	"github.com/nethahussain/padarchive/internal/crawler"
	"github.com/nethahussain/padarchive/internal/database"
	"github.com/nethahussain/padarchive/internal/model"
	"github.com/nethahussain/padarchive/internal/report"
	"github.com/nethahussain/padarchive/internal/wiki"
)

// apiClientTimeout bounds each MediaWiki API request. Pagination means a
// crawl can run for minutes; this only caps a single page fetch.
const apiClientTimeout = 30 * time.Second

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find Etherpad links on a Wikimedia wiki",
		Long: `Discover crawls a wiki's external-link index (the MediaWiki exturlusage
API) for links to etherpad.wikimedia.org and writes the findings as a set
of report files.

Examples:
  # Crawl meta.wikimedia.org (the default)
  padarchive discover

  # Crawl wikimania.wikimedia.org
  padarchive discover --wiki wikimania

  # Crawl the English Wikipedia
  padarchive discover --wiki en.wikipedia

  # Crawl an arbitrary MediaWiki installation
  padarchive discover --url https://my.wiki.org/w/api.php

  # Only write the JSON report and the plain URL list
  padarchive discover --format json --format urls

Configuration file (.padarchive) example:
  pageDelay: 1s
  shortcuts:
    intern: https://intern.example.org/w/api.php`,
		Args: cobra.NoArgs,
		RunE: runDiscoverCmd,
	}

	cmd.Flags().StringP("wiki", "w", config.DefaultWiki,
		"Wiki shortcut (e.g. meta, wikimania) or lang.project pattern (e.g. en.wikipedia)")
	cmd.Flags().StringP("url", "u", "",
		"Explicit MediaWiki API URL (overrides --wiki)")
	cmd.Flags().StringP("query", "q", config.DefaultQuery,
		"Link target substring to search for")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory for report files")
	cmd.Flags().DurationP("delay", "d", config.DefaultPageDelay,
		"Delay between paginated API requests")
	cmd.Flags().StringSliceP("format", "f", config.DefaultFormats,
		"Report formats to write (json, wikicode, csv, urls, markdown)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .padarchive in current or home directory)")

	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildDiscoverConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateDiscover(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runDiscover(ctx, cfg, logger)
}

// buildDiscoverConfig creates a Config from cobra command flags and the
// optional configuration file.
func buildDiscoverConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Wiki, err = cmd.Flags().GetString("wiki")
	if err != nil {
		return nil, err
	}

	cfg.APIURL, err = cmd.Flags().GetString("url")
	if err != nil {
		return nil, err
	}

	cfg.Query, err = cmd.Flags().GetString("query")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.PageDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Formats, err = cmd.Flags().GetStringSlice("format")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyConfigFile merges the optional yaml configuration file into cfg.
// If the user explicitly specified a config file path, a missing file is
// an error; with the default search a missing file is simply skipped.
func applyConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return cfg.Apply(cf)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// runDiscover executes the discovery crawl and writes the reports.
func runDiscover(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var endpoint wiki.Endpoint
	if cfg.APIURL != "" {
		endpoint = wiki.FromAPIURL(cfg.APIURL)
	} else {
		endpoint = wiki.NewResolver(cfg.Shortcuts).Resolve(cfg.Wiki)
	}

	logger.Info("starting discovery",
		"apiURL", endpoint.APIURL,
		"query", cfg.Query,
		"pageDelay", cfg.PageDelay,
	)

	fmt.Printf("Wiki:   %s\n", endpoint.Label)
	fmt.Printf("API:    %s\n", endpoint.APIURL)
	fmt.Printf("Query:  %s\n", cfg.Query)
	fmt.Println()
	fmt.Println("Fetching Etherpad links...")

	finder := crawler.NewFinder(
		&http.Client{Timeout: apiClientTimeout},
		crawler.WithDelay(cfg.PageDelay),
		crawler.WithUserAgent(cfg.FinderUserAgent),
		crawler.WithLogger(logger),
		crawler.WithProgress(func(protocol string, pageHits, total int) {
			fmt.Printf("  [%s] +%d links (total %d)\n", protocol, pageHits, total)
		}),
	)

	raw, err := finder.FetchAll(ctx, endpoint.APIURL, cfg.Query)
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		fmt.Println("\nNo Etherpad links found on this wiki.")
		return nil
	}

	fmt.Println("\nProcessing results...")
	rep := model.NewReport(raw)

	printDiscoverySummary(rep.Summary)

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Printf("\nWriting outputs to %s/...\n", cfg.OutputDir)
	for _, format := range cfg.Formats {
		path, err := writeReport(cfg, endpoint, rep, format)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved %-8s -> %s\n", format, path)
	}

	saveDiscoveryRun(ctx, cfg, endpoint, rep, logger)

	fmt.Println("\nDone!")
	return nil
}

// printDiscoverySummary prints the headline counts in a box, matching the
// width of the widest realistic count.
func printDiscoverySummary(s model.Summary) {
	fmt.Println()
	fmt.Println("  +-----------------------------------------+")
	fmt.Printf("  |  Unique Etherpad URLs:  %10s      |\n", humanize.Comma(int64(s.UniqueEtherpadURLs)))
	fmt.Printf("  |  Wiki pages with links: %10s      |\n", humanize.Comma(int64(s.UniqueWikiPages)))
	fmt.Printf("  |  Total link instances:  %10s      |\n", humanize.Comma(int64(s.TotalResults)))
	fmt.Println("  +-----------------------------------------+")
}

// reportFileSuffixes maps each format to its output filename suffix,
// appended to the "<label>_etherpad" prefix.
var reportFileSuffixes = map[string]string{
	config.FormatJSON:     "_links.json",
	config.FormatURLs:     "_urls.txt",
	config.FormatCSV:      "_links.csv",
	config.FormatWikicode: "_wikicode.txt",
	config.FormatMarkdown: "_links.md",
}

// writeReport writes one report format and returns the file path.
func writeReport(cfg *config.Config, endpoint wiki.Endpoint, rep *model.Report, format string) (string, error) {
	path := filepath.Join(cfg.OutputDir, endpoint.Label+"_etherpad"+reportFileSuffixes[format])

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path is built from the configured output dir
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	var w report.Writer
	switch format {
	case config.FormatJSON:
		w = report.NewJSONWriter(f)
	case config.FormatURLs:
		w = report.NewURLListWriter(f)
	case config.FormatCSV:
		w = report.NewCSVWriter(f, endpoint.BaseURL)
	case config.FormatWikicode:
		w = report.NewWikicodeWriter(f, endpoint.BaseURL, endpoint.Label)
	case config.FormatMarkdown:
		w = report.NewMarkdownWriter(f, endpoint.BaseURL, endpoint.Label)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if _, err := w.Write(rep); err != nil {
		return "", fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return path, nil
}

// saveDiscoveryRun records the crawl in the history database. Failures
// are logged but never abort the run; the reports are already on disk.
func saveDiscoveryRun(ctx context.Context, cfg *config.Config, endpoint wiki.Endpoint, rep *model.Report, logger *slog.Logger) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	_, err = db.SaveDiscoveryRun(ctx, &database.DiscoveryRun{
		Wiki:         endpoint.Label,
		APIURL:       endpoint.APIURL,
		Query:        cfg.Query,
		TotalResults: rep.Summary.TotalResults,
		UniquePads:   rep.Summary.UniqueEtherpadURLs,
		UniquePages:  rep.Summary.UniqueWikiPages,
		Formats:      cfg.Formats,
		OutputDir:    cfg.OutputDir,
	})
	if err != nil {
		logger.Error("failed to save discovery run", "error", err)
		return
	}

	logger.Info("discovery run saved to history database", "dir", cfg.DBDir)
}
