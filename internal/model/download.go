package model

import "time"

// DownloadStatus classifies the outcome of a single pad download attempt.
type DownloadStatus string

// Download outcome classifications. HTTPError covers non-2xx responses,
// URLError covers transport-level failures (DNS, timeout, connection),
// and Error covers everything else (for example a failed file write).
const (
	StatusOK        DownloadStatus = "ok"
	StatusEmpty     DownloadStatus = "empty"
	StatusHTTPError DownloadStatus = "http_error"
	StatusURLError  DownloadStatus = "url_error"
	StatusError     DownloadStatus = "error"
)

// Failed reports whether the status counts toward the failed tally.
func (s DownloadStatus) Failed() bool {
	return s == StatusHTTPError || s == StatusURLError || s == StatusError
}

// DownloadResult is the transient outcome of one pad download attempt.
type DownloadResult struct {
	// Status classifies the outcome.
	Status DownloadStatus `json:"status"`

	// Size is the number of bytes downloaded on success.
	Size int `json:"size,omitempty"`

	// Filepath is the path the pad content was written to on success.
	Filepath string `json:"filepath,omitempty"`

	// Error holds the failure detail for non-success outcomes.
	Error string `json:"error,omitempty"`
}

// DownloadStats are the per-run outcome counters.
type DownloadStats struct {
	// OK counts pads downloaded with non-empty content.
	OK int `json:"ok"`

	// Empty counts pads that downloaded successfully but held only
	// whitespace. The (empty) file is still written.
	Empty int `json:"empty"`

	// Skipped counts pads with no derivable name plus, in resume mode,
	// pads whose output file already exists with content.
	Skipped int `json:"skipped"`

	// Failed counts pads whose download attempt failed.
	Failed int `json:"failed"`
}

// DownloadError is one per-failure entry in the download log.
type DownloadError struct {
	// URL is the pad URL as it appeared in the links report.
	URL string `json:"url"`

	// ExportURL is the derived plaintext-export endpoint that failed.
	ExportURL string `json:"export_url"`

	// PadName is the derived pad identifier.
	PadName string `json:"pad_name"`

	// Error is the failure detail.
	Error string `json:"error"`
}

// DownloadLog is the error log persisted unconditionally at the end of a
// download run, even when every pad failed.
type DownloadLog struct {
	// Timestamp is the UTC completion time of the run.
	Timestamp time.Time `json:"timestamp"`

	// InputFile is the links report the run was driven by.
	InputFile string `json:"input_file"`

	// TotalURLs is the number of pad URLs in the work list.
	TotalURLs int `json:"total_urls"`

	// Stats are the per-run outcome counters.
	Stats DownloadStats `json:"stats"`

	// Errors holds one entry per failed pad.
	Errors []DownloadError `json:"errors"`
}

// Manifest is the file inventory persisted at the end of a download run.
// It lists every non-log output file present in the output directory,
// including files left by earlier runs against the same directory.
type Manifest struct {
	// Timestamp is the UTC completion time of the run.
	Timestamp time.Time `json:"timestamp"`

	// SourceFile is the links report the run was driven by.
	SourceFile string `json:"source_file"`

	// TotalURLs is the number of pad URLs in the work list.
	TotalURLs int `json:"total_urls"`

	// Downloaded, Empty, Failed, and Skipped mirror the run stats.
	Downloaded int `json:"downloaded"`
	Empty      int `json:"empty"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`

	// Files is the sorted list of output filenames, excluding the log
	// and manifest themselves (anything with a leading underscore).
	Files []string `json:"files"`
}
