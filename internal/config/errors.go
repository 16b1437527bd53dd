package config

import "errors"

// Configuration validation errors, returned by ValidateDiscover and
// ValidateDownload. Package-level sentinels allow callers to use
// errors.Is while keeping human-readable messages.
var (
	// ErrNoQuery is returned when the link-target query is empty.
	ErrNoQuery = errors.New("no query: the link-target substring must not be empty")

	// ErrNoFormats is returned when the format list is empty.
	ErrNoFormats = errors.New("no output formats selected")

	// ErrUnknownFormat is returned when the format list contains a name
	// outside json, wikicode, csv, urls, markdown.
	ErrUnknownFormat = errors.New("unknown output format: valid formats are json, wikicode, csv, urls, markdown")

	// ErrInvalidDelay is returned when a delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrNoInputFile is returned when the download command is invoked
	// without a links report.
	ErrNoInputFile = errors.New("no input file: provide the path to a *_etherpad_links.json report")
)
