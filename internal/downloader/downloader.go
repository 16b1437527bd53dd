package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nethahussain/padarchive/internal/model"
	"github.com/nethahussain/padarchive/internal/pad"
)

// Output files written at the end of every run. The leading underscore
// keeps them out of the manifest's file listing.
const (
	// LogFileName is the per-run error log.
	LogFileName = "_download_log.json"

	// ManifestFileName is the per-run file inventory.
	ManifestFileName = "_manifest.json"
)

// Progress labels passed to the progress callback. OK, EMPTY, and FAIL
// mirror download outcomes; SKIP and EXISTS are the two no-request paths.
const (
	LabelOK     = "OK"
	LabelEmpty  = "EMPTY"
	LabelFail   = "FAIL"
	LabelSkip   = "SKIP"
	LabelExists = "EXISTS"
)

// Event is one progress notification, emitted once per pad.
type Event struct {
	// Index is the 1-based position in the work list.
	Index int

	// Total is the work list length.
	Total int

	// URL is the pad URL from the report.
	URL string

	// PadName is the derived pad name; empty when interpretation failed.
	PadName string

	// Label is one of the progress labels above.
	Label string

	// Size is the downloaded byte count for OK outcomes.
	Size int

	// Error is the failure detail for FAIL outcomes.
	Error string
}

// ProgressFunc receives per-pad progress events.
type ProgressFunc func(Event)

// RunResult is the outcome of one download run.
type RunResult struct {
	// Stats are the per-run outcome counters.
	Stats model.DownloadStats

	// Errors holds one entry per failed pad.
	Errors []model.DownloadError
}

// Downloader fetches pad exports one at a time into an output directory.
type Downloader struct {
	// client performs the HTTP requests; its timeout bounds each one.
	client *http.Client

	// outputDir is where pad files, the log, and the manifest land.
	outputDir string

	// delay is the pause after every attempted network call.
	delay time.Duration

	// userAgent identifies the archiver to the pad service.
	userAgent string

	// resume skips pads whose output file already exists with content.
	resume bool

	// logger records per-pad failures.
	logger *slog.Logger

	// progress, when set, is called once per pad.
	progress ProgressFunc
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithDelay sets the pause after each attempted network call.
func WithDelay(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.delay = d
	}
}

// WithUserAgent sets the User-Agent header for export requests.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithResume enables resume mode.
func WithResume(resume bool) Option {
	return func(dl *Downloader) {
		dl.resume = resume
	}
}

// WithLogger sets the logger for per-pad failures.
func WithLogger(logger *slog.Logger) Option {
	return func(dl *Downloader) {
		dl.logger = logger
	}
}

// WithProgress sets a callback invoked once per pad.
func WithProgress(fn ProgressFunc) Option {
	return func(dl *Downloader) {
		dl.progress = fn
	}
}

// NewDownloader creates a Downloader writing into outputDir.
// The client is injected so tests can point it at a fake export server
// and so the caller controls the request timeout.
func NewDownloader(client *http.Client, outputDir string, opts ...Option) *Downloader {
	dl := &Downloader{
		client:    client,
		outputDir: outputDir,
		delay:     300 * time.Millisecond,
		userAgent: "padarchive",
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(dl)
	}

	return dl
}

// Run processes the work list sequentially and returns the run outcome.
//
// Per pad, in order: an uninterpretable link is counted as skipped with
// no network call; in resume mode an existing non-empty output file is
// counted as skipped with no network call; otherwise one GET is issued
// and the outcome recorded. The fixed delay follows every attempted
// call, never a skip. Context cancellation stops the loop and returns
// the partial result alongside the context error.
func (dl *Downloader) Run(ctx context.Context, urls []string) (*RunResult, error) {
	result := &RunResult{Errors: make([]model.DownloadError, 0)}
	total := len(urls)

	for i, u := range urls {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		info := pad.Interpret(u)
		if info == nil {
			result.Stats.Skipped++
			dl.emit(Event{Index: i + 1, Total: total, URL: u, Label: LabelSkip})
			continue
		}

		if dl.resume && dl.alreadyDownloaded(info.SafeFilename) {
			result.Stats.Skipped++
			dl.emit(Event{Index: i + 1, Total: total, URL: u, PadName: info.Name, Label: LabelExists})
			continue
		}

		res := dl.downloadPad(ctx, info)
		switch res.Status {
		case model.StatusOK:
			result.Stats.OK++
			dl.emit(Event{Index: i + 1, Total: total, URL: u, PadName: info.Name, Label: LabelOK, Size: res.Size})
		case model.StatusEmpty:
			result.Stats.Empty++
			dl.emit(Event{Index: i + 1, Total: total, URL: u, PadName: info.Name, Label: LabelEmpty})
		default:
			result.Stats.Failed++
			result.Errors = append(result.Errors, model.DownloadError{
				URL:       u,
				ExportURL: info.ExportURL,
				PadName:   info.Name,
				Error:     res.Error,
			})
			dl.logger.Error("pad download failed",
				"pad", info.Name,
				"exportURL", info.ExportURL,
				"error", res.Error,
			)
			dl.emit(Event{Index: i + 1, Total: total, URL: u, PadName: info.Name, Label: LabelFail, Error: res.Error})
		}

		if dl.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(dl.delay):
			}
		}
	}

	return result, nil
}

// emit sends a progress event if a callback is configured.
func (dl *Downloader) emit(ev Event) {
	if dl.progress != nil {
		dl.progress(ev)
	}
}

// alreadyDownloaded reports whether a non-empty output file exists.
// Empty files do not count: an interrupted run may have created the file
// without finishing the write.
func (dl *Downloader) alreadyDownloaded(filename string) bool {
	fi, err := os.Stat(filepath.Join(dl.outputDir, filename))
	return err == nil && fi.Size() > 0
}

// downloadPad fetches one pad export and writes it to disk.
// The file is written even when the body is whitespace-only, so that
// resume mode and the manifest still see the pad as handled.
func (dl *Downloader) downloadPad(ctx context.Context, info *pad.Info) model.DownloadResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.ExportURL, nil)
	if err != nil {
		return model.DownloadResult{Status: model.StatusURLError, Error: err.Error()}
	}
	req.Header.Set("User-Agent", dl.userAgent)

	resp, err := dl.client.Do(req)
	if err != nil {
		return model.DownloadResult{Status: model.StatusURLError, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Best effort drain
		return model.DownloadResult{
			Status: model.StatusHTTPError,
			Error:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.DownloadResult{Status: model.StatusError, Error: err.Error()}
	}

	path := filepath.Join(dl.outputDir, info.SafeFilename)
	if err := os.WriteFile(path, body, 0600); err != nil {
		return model.DownloadResult{Status: model.StatusError, Error: err.Error()}
	}

	status := model.StatusOK
	if strings.TrimSpace(string(body)) == "" {
		status = model.StatusEmpty
	}

	return model.DownloadResult{
		Status:   status,
		Size:     len(body),
		Filepath: path,
	}
}

// WriteLog persists the download log. It is written unconditionally at
// run end, even when every pad failed.
func (dl *Downloader) WriteLog(result *RunResult, inputFile string, totalURLs int) (string, error) {
	log := model.DownloadLog{
		Timestamp: time.Now().UTC(),
		InputFile: inputFile,
		TotalURLs: totalURLs,
		Stats:     result.Stats,
		Errors:    result.Errors,
	}

	path := filepath.Join(dl.outputDir, LogFileName)
	if err := writeJSONFile(path, log); err != nil {
		return "", fmt.Errorf("failed to write download log: %w", err)
	}
	return path, nil
}

// WriteManifest persists the file inventory: every file in the output
// directory except the underscore-prefixed log and manifest.
func (dl *Downloader) WriteManifest(result *RunResult, inputFile string, totalURLs int) (string, error) {
	entries, err := os.ReadDir(dl.outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to list output directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "_") {
			continue
		}
		files = append(files, e.Name())
	}

	manifest := model.Manifest{
		Timestamp:  time.Now().UTC(),
		SourceFile: inputFile,
		TotalURLs:  totalURLs,
		Downloaded: result.Stats.OK,
		Empty:      result.Stats.Empty,
		Failed:     result.Stats.Failed,
		Skipped:    result.Stats.Skipped,
		Files:      files,
	}

	path := filepath.Join(dl.outputDir, ManifestFileName)
	if err := writeJSONFile(path, manifest); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// writeJSONFile marshals v as indented JSON and writes it to path.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// DefaultOutputDir derives the pad output directory from the report
// filename: downloaded_pads/<wiki name>, where the wiki name is the
// report basename without extension and the "_etherpad_links" suffix.
func DefaultOutputDir(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, "_etherpad_links")
	return filepath.Join("downloaded_pads", base)
}
