package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/nethahussain/padarchive/internal/config"
	"github.com/nethahussain/padarchive/internal/database"
	"github.com/nethahussain/padarchive/internal/downloader"
	"github.com/nethahussain/padarchive/internal/model"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <links-report.json>",
		Short: "Download the pads listed in a discovery report",
		Long: `Download fetches the plaintext export of every Etherpad listed in a
discovery report (the *_etherpad_links.json file written by discover).

Pads are fetched one at a time with a fixed delay between requests. Failed
pads are recorded in the download log and never abort the run.

Examples:
  # Download all pads found on wikimania
  padarchive download output/wikimania_wikimedia_etherpad_links.json

  # Write pads to a custom directory
  padarchive download output/meta_wikimedia_etherpad_links.json --output pads/

  # Resume an interrupted run, skipping already downloaded pads
  padarchive download output/meta_wikimedia_etherpad_links.json --resume`,
		Args: cobra.ExactArgs(1),
		RunE: runDownloadCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output directory for pad files (default: downloaded_pads/<wiki name>)")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Delay after each download attempt")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each pad export request")
	cmd.Flags().BoolP("resume", "r", false,
		"Skip pads whose output file already exists with content")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .padarchive in current or home directory)")

	return cmd
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildDownloadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateDownload(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runDownload(ctx, cfg, logger)
}

// buildDownloadConfig creates a Config from cobra command flags and the
// optional configuration file.
func buildDownloadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputFile = args[0]

	var err error

	cfg.DownloadDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
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

// runDownload executes the pad download run.
func runDownload(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	rep, err := model.LoadReport(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load links report %s: %w", cfg.InputFile, err)
	}

	urls := rep.PadURLs()
	if len(urls) == 0 {
		return errors.New("no Etherpad URLs found in the input file")
	}

	outputDir := cfg.DownloadDir
	if outputDir == "" {
		outputDir = downloader.DefaultOutputDir(cfg.InputFile)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	printDownloadBanner(cfg, outputDir, len(urls))

	logger.Info("starting download",
		"input", cfg.InputFile,
		"output", outputDir,
		"urls", len(urls),
		"resume", cfg.Resume,
	)

	dl := downloader.NewDownloader(
		&http.Client{Timeout: cfg.Timeout},
		outputDir,
		downloader.WithDelay(cfg.RequestDelay),
		downloader.WithUserAgent(cfg.ArchiverUserAgent),
		downloader.WithResume(cfg.Resume),
		downloader.WithLogger(logger),
		downloader.WithProgress(printDownloadEvent),
	)

	result, runErr := dl.Run(ctx, urls)

	// The log and manifest cover whatever completed, even on interrupt.
	logPath, err := dl.WriteLog(result, cfg.InputFile, len(urls))
	if err != nil {
		logger.Error("failed to write download log", "error", err)
	}
	manifestPath, err := dl.WriteManifest(result, cfg.InputFile, len(urls))
	if err != nil {
		logger.Error("failed to write manifest", "error", err)
	}

	printDownloadTally(result.Stats, len(urls))
	if logPath != "" {
		fmt.Printf("\n  Download log saved to %s\n", logPath)
	}
	if manifestPath != "" {
		fmt.Printf("  Manifest saved to %s\n", manifestPath)
	}

	saveDownloadRun(ctx, cfg, outputDir, result, len(urls), logger)

	return runErr
}

// printDownloadBanner prints the run header.
func printDownloadBanner(cfg *config.Config, outputDir string, totalURLs int) {
	fmt.Println("+----------------------------------------------+")
	fmt.Println("|   Wikimedia Etherpad Downloader              |")
	fmt.Println("+----------------------------------------------+")
	fmt.Printf("  Input:    %s\n", cfg.InputFile)
	fmt.Printf("  Output:   %s/\n", outputDir)
	fmt.Printf("  URLs:     %d\n", totalURLs)
	fmt.Printf("  Delay:    %s\n", cfg.RequestDelay)
	fmt.Printf("  Resume:   %v\n", cfg.Resume)
	fmt.Println()
}

// printDownloadEvent prints one per-pad progress line.
func printDownloadEvent(ev downloader.Event) {
	switch ev.Label {
	case downloader.LabelSkip:
		fmt.Printf("  [%4d/%d] SKIP (no pad name): %s\n", ev.Index, ev.Total, ev.URL)
	case downloader.LabelExists:
		fmt.Printf("  [%4d/%d] EXISTS: %s\n", ev.Index, ev.Total, ev.PadName)
	case downloader.LabelOK:
		fmt.Printf("  [%4d/%d] OK (%7d bytes): %s\n", ev.Index, ev.Total, ev.Size, ev.PadName)
	case downloader.LabelEmpty:
		fmt.Printf("  [%4d/%d] EMPTY: %s\n", ev.Index, ev.Total, ev.PadName)
	case downloader.LabelFail:
		fmt.Printf("  [%4d/%d] FAIL: %s (%s)\n", ev.Index, ev.Total, ev.PadName, ev.Error)
	}
}

// printDownloadTally prints the final stats block.
func printDownloadTally(stats model.DownloadStats, totalURLs int) {
	fmt.Println("\n==================================================")
	fmt.Println("  DOWNLOAD COMPLETE")
	fmt.Printf("  Success:  %d\n", stats.OK)
	fmt.Printf("  Empty:    %d\n", stats.Empty)
	fmt.Printf("  Skipped:  %d\n", stats.Skipped)
	fmt.Printf("  Failed:   %d\n", stats.Failed)
	fmt.Printf("  Total:    %d\n", totalURLs)
	fmt.Println("==================================================")
}

// saveDownloadRun records the run in the history database. Failures are
// logged but never abort the run; the pad files are already on disk.
func saveDownloadRun(ctx context.Context, cfg *config.Config, outputDir string, result *downloader.RunResult, totalURLs int, logger *slog.Logger) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	_, err = db.SaveDownloadRun(ctx, &database.DownloadRun{
		InputFile: cfg.InputFile,
		OutputDir: outputDir,
		TotalURLs: totalURLs,
		Stats:     result.Stats,
	})
	if err != nil {
		logger.Error("failed to save download run", "error", err)
		return
	}

	logger.Info("download run saved to history database", "dir", cfg.DBDir)
}
