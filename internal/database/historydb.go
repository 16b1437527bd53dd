package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nethahussain/padarchive/internal/model"
)

// HistoryDB provides SQLite-based storage for run history.
//
// Design decision: one database file shared by all wikis rather than a
// file per wiki. Runs across wikis are listed together, and a single
// file keeps backup and cleanup trivial.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "padarchive.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Discovery runs record each link-discovery crawl
	CREATE TABLE IF NOT EXISTS discovery_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wiki TEXT NOT NULL,
		api_url TEXT NOT NULL,
		query TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_results INTEGER NOT NULL,
		unique_pads INTEGER NOT NULL,
		unique_pages INTEGER NOT NULL,
		formats TEXT,
		output_dir TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_discovery_wiki ON discovery_runs(wiki);
	CREATE INDEX IF NOT EXISTS idx_discovery_timestamp ON discovery_runs(timestamp);

	-- Download runs record each pad-archiving pass
	CREATE TABLE IF NOT EXISTS download_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_file TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_urls INTEGER NOT NULL,
		ok INTEGER NOT NULL,
		empty INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_download_input ON download_runs(input_file);
	CREATE INDEX IF NOT EXISTS idx_download_timestamp ON download_runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// DiscoveryRun is one recorded link-discovery crawl.
type DiscoveryRun struct {
	ID           int64
	Wiki         string
	APIURL       string
	Query        string
	Timestamp    time.Time
	TotalResults int
	UniquePads   int
	UniquePages  int
	Formats      []string
	OutputDir    string
}

// SaveDiscoveryRun records a completed discovery crawl.
func (hdb *HistoryDB) SaveDiscoveryRun(ctx context.Context, run *DiscoveryRun) (int64, error) {
	query := `
	INSERT INTO discovery_runs (wiki, api_url, query, total_results, unique_pads, unique_pages, formats, output_dir)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.Wiki,
		run.APIURL,
		run.Query,
		run.TotalResults,
		run.UniquePads,
		run.UniquePages,
		strings.Join(run.Formats, ","),
		run.OutputDir,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save discovery run: %w", err)
	}

	return result.LastInsertId()
}

// ListDiscoveryRuns returns discovery runs, newest first. An empty wiki
// matches all wikis.
func (hdb *HistoryDB) ListDiscoveryRuns(ctx context.Context, wiki string) ([]DiscoveryRun, error) {
	query := `
	SELECT id, wiki, api_url, query, timestamp, total_results, unique_pads, unique_pages, formats, output_dir
	FROM discovery_runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)

	if wiki != "" {
		query += " AND wiki = ?"
		args = append(args, wiki)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list discovery runs: %w", err)
	}
	defer rows.Close()

	var results []DiscoveryRun
	for rows.Next() {
		var run DiscoveryRun
		var timestamp string
		var formats sql.NullString
		var outputDir sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Wiki,
			&run.APIURL,
			&run.Query,
			&timestamp,
			&run.TotalResults,
			&run.UniquePads,
			&run.UniquePages,
			&formats,
			&outputDir,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discovery run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		if formats.Valid && formats.String != "" {
			run.Formats = strings.Split(formats.String, ",")
		}
		run.OutputDir = outputDir.String

		results = append(results, run)
	}

	return results, rows.Err()
}

// DownloadRun is one recorded pad-archiving pass.
type DownloadRun struct {
	ID        int64
	InputFile string
	OutputDir string
	Timestamp time.Time
	TotalURLs int
	Stats     model.DownloadStats
}

// SaveDownloadRun records a completed download pass.
func (hdb *HistoryDB) SaveDownloadRun(ctx context.Context, run *DownloadRun) (int64, error) {
	query := `
	INSERT INTO download_runs (input_file, output_dir, total_urls, ok, empty, skipped, failed)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.InputFile,
		run.OutputDir,
		run.TotalURLs,
		run.Stats.OK,
		run.Stats.Empty,
		run.Stats.Skipped,
		run.Stats.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save download run: %w", err)
	}

	return result.LastInsertId()
}

// ListDownloadRuns returns download runs, newest first. An empty
// inputFile matches all runs.
func (hdb *HistoryDB) ListDownloadRuns(ctx context.Context, inputFile string) ([]DownloadRun, error) {
	query := `
	SELECT id, input_file, output_dir, timestamp, total_urls, ok, empty, skipped, failed
	FROM download_runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)

	if inputFile != "" {
		query += " AND input_file = ?"
		args = append(args, inputFile)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list download runs: %w", err)
	}
	defer rows.Close()

	var results []DownloadRun
	for rows.Next() {
		var run DownloadRun
		var timestamp string

		err := rows.Scan(
			&run.ID,
			&run.InputFile,
			&run.OutputDir,
			&timestamp,
			&run.TotalURLs,
			&run.Stats.OK,
			&run.Stats.Empty,
			&run.Stats.Skipped,
			&run.Stats.Failed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		results = append(results, run)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
