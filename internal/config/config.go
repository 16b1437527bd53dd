package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Delays and timeouts mirror the polite
// defaults the Wikimedia API etiquette asks for: one request in flight at
// a time with a fixed pause between calls.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "padarchive"

	// DefaultWiki is the wiki queried when no --wiki or --url is given.
	DefaultWiki = "meta"

	// DefaultQuery is the link-target substring searched for in the
	// external-URL-usage API.
	DefaultQuery = "etherpad.wikimedia.org"

	// DefaultOutputDir is where discovery reports are written.
	DefaultOutputDir = "output"

	// DefaultDownloadDirPrefix is the parent directory for downloaded
	// pads when --output is not given; the wiki name is appended.
	DefaultDownloadDirPrefix = "downloaded_pads"

	// DefaultPageDelay is the pause between paginated API requests.
	DefaultPageDelay = 500 * time.Millisecond

	// DefaultRequestDelay is the pause after each pad download attempt.
	DefaultRequestDelay = 300 * time.Millisecond

	// DefaultTimeout bounds each pad export request.
	DefaultTimeout = 15 * time.Second

	// DefaultFinderUserAgent identifies the link-discovery pipeline to
	// the MediaWiki API. Wikimedia asks for a descriptive User-Agent
	// with contact information on all API traffic.
	DefaultFinderUserAgent = "WikimediaEtherpadFinder/1.0 (https://github.com; etherpad preservation)"

	// DefaultArchiverUserAgent identifies the downloader to the
	// Etherpad service.
	DefaultArchiverUserAgent = "WikimediaEtherpadArchiver/1.0 (https://github.com/nethahussain/EtherpadArchives)"
)

// Report formats the discovery pipeline can emit.
const (
	FormatJSON     = "json"
	FormatWikicode = "wikicode"
	FormatCSV      = "csv"
	FormatURLs     = "urls"
	FormatMarkdown = "markdown"
)

// DefaultFormats are the formats written when --format is not given.
// Markdown is opt-in to keep the default output set identical across
// versions.
var DefaultFormats = []string{FormatJSON, FormatWikicode, FormatCSV, FormatURLs}

// validFormats is the set of recognized format names.
var validFormats = map[string]bool{
	FormatJSON:     true,
	FormatWikicode: true,
	FormatCSV:      true,
	FormatURLs:     true,
	FormatMarkdown: true,
}

// Config holds all options for one padarchive run. A single flat struct
// covers both subcommands; each command populates and validates only the
// fields it uses. It is built from CLI flags plus the optional config
// file and passed down by dependency injection, never global state.
type Config struct {
	// Wiki is the wiki shortcut or "lang.project" pattern to resolve.
	Wiki string

	// APIURL is an explicit MediaWiki API endpoint. When set it
	// overrides Wiki.
	APIURL string

	// Query is the link-target substring passed to the
	// external-URL-usage API.
	Query string

	// OutputDir is the directory discovery reports are written to.
	OutputDir string

	// Formats is the list of report formats to write.
	Formats []string

	// PageDelay is the pause between paginated API requests.
	PageDelay time.Duration

	// InputFile is the links report driving a download run.
	InputFile string

	// DownloadDir is the directory pad contents are written to.
	// Empty means derive it from the input filename.
	DownloadDir string

	// RequestDelay is the pause after each pad download attempt.
	RequestDelay time.Duration

	// Timeout bounds each pad export request.
	Timeout time.Duration

	// Resume skips pads whose output file already exists with content.
	Resume bool

	// Verbose enables debug-level logging.
	Verbose bool

	// ConfigFilePath is an explicit config file path. Empty means
	// search the working directory and then the home directory.
	ConfigFilePath string

	// FinderUserAgent is the User-Agent for API requests.
	FinderUserAgent string

	// ArchiverUserAgent is the User-Agent for pad export requests.
	ArchiverUserAgent string

	// Shortcuts are user-defined wiki shortcuts from the config file,
	// merged over the built-in table.
	Shortcuts map[string]string

	// DBDir is the directory of the run-history database.
	DBDir string
}

// NewConfig creates a Config with default values. Defaults are non-zero,
// so the constructor doubles as their documentation.
func NewConfig() *Config {
	return &Config{
		Wiki:              DefaultWiki,
		Query:             DefaultQuery,
		OutputDir:         DefaultOutputDir,
		Formats:           append([]string(nil), DefaultFormats...),
		PageDelay:         DefaultPageDelay,
		RequestDelay:      DefaultRequestDelay,
		Timeout:           DefaultTimeout,
		FinderUserAgent:   DefaultFinderUserAgent,
		ArchiverUserAgent: DefaultArchiverUserAgent,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for padarchive, following the
// XDG Base Directory Specification.
// On Linux: ~/.local/share/padarchive
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ValidateDiscover checks the fields used by the discover command.
// The first problem found is returned; fixing one often voids the rest.
func (c *Config) ValidateDiscover() error {
	if c.Query == "" {
		return ErrNoQuery
	}
	if c.PageDelay < 0 {
		return ErrInvalidDelay
	}
	if len(c.Formats) == 0 {
		return ErrNoFormats
	}
	for _, f := range c.Formats {
		if !validFormats[f] {
			return ErrUnknownFormat
		}
	}
	return nil
}

// ValidateDownload checks the fields used by the download command.
func (c *Config) ValidateDownload() error {
	if c.InputFile == "" {
		return ErrNoInputFile
	}
	if c.RequestDelay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
