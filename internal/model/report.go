package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Report loading errors.
// ErrMalformedReport signals a schema mismatch in the input file; it is
// fatal to a download run and checked with errors.Is by the command layer.
var (
	// ErrMalformedReport is returned when a report file does not contain
	// the expected structure (missing sections or wrong types).
	ErrMalformedReport = errors.New("malformed links report")
)

// RawLink is a single hit from the external-URL-usage API: one occurrence
// of a pad URL on one wiki page. Raw hits exist only between fetching and
// aggregation; they are never persisted.
type RawLink struct {
	// URL is the external pad URL as recorded by the wiki.
	URL string `json:"url"`

	// Title is the wiki page the link appears on.
	Title string `json:"title"`
}

// Summary holds the headline counts of an aggregated report.
type Summary struct {
	// TotalResults is the number of raw hits, duplicates included.
	TotalResults int `json:"total_results"`

	// UniqueEtherpadURLs is the number of distinct pad URLs.
	UniqueEtherpadURLs int `json:"unique_etherpad_urls"`

	// UniqueWikiPages is the number of distinct wiki pages with pad links.
	UniqueWikiPages int `json:"unique_wiki_pages"`
}

// Report is the aggregated link report and the JSON interchange format
// between the discover and download pipelines.
//
// The two mappings are inverses of each other: every (url, title) pair
// present in EtherpadURLs must appear as (title, url) in
// PagesWithEtherpads, and vice versa. Each value slice is sorted and free
// of duplicates. Outer key ordering in the serialized form comes from
// encoding/json, which marshals map keys in sorted order.
type Report struct {
	// Summary holds the headline counts.
	Summary Summary `json:"summary"`

	// EtherpadURLs maps each pad URL to the sorted set of page titles
	// that reference it.
	EtherpadURLs map[string][]string `json:"etherpad_urls"`

	// PagesWithEtherpads maps each page title to the sorted set of pad
	// URLs it references.
	PagesWithEtherpads map[string][]string `json:"pages_with_etherpads"`
}

// NewReport aggregates raw hits into a Report. It is a pure function:
// reordering or duplicating the input never changes the output.
func NewReport(raw []RawLink) *Report {
	urlPages := make(map[string]map[string]struct{})
	pageURLs := make(map[string]map[string]struct{})

	for _, r := range raw {
		if urlPages[r.URL] == nil {
			urlPages[r.URL] = make(map[string]struct{})
		}
		urlPages[r.URL][r.Title] = struct{}{}

		if pageURLs[r.Title] == nil {
			pageURLs[r.Title] = make(map[string]struct{})
		}
		pageURLs[r.Title][r.URL] = struct{}{}
	}

	return &Report{
		Summary: Summary{
			TotalResults:       len(raw),
			UniqueEtherpadURLs: len(urlPages),
			UniqueWikiPages:    len(pageURLs),
		},
		EtherpadURLs:       sortSets(urlPages),
		PagesWithEtherpads: sortSets(pageURLs),
	}
}

// sortSets converts each value set into a sorted slice.
func sortSets(sets map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(sets))
	for key, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[key] = values
	}
	return out
}

// PadURLs returns the sorted, de-duplicated set of pad URLs in the report.
// This is the work list for the download pipeline.
func (r *Report) PadURLs() []string {
	urls := make([]string, 0, len(r.EtherpadURLs))
	for u := range r.EtherpadURLs {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// PageTitles returns the sorted set of page titles in the report.
func (r *Report) PageTitles() []string {
	titles := make([]string, 0, len(r.PagesWithEtherpads))
	for t := range r.PagesWithEtherpads {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Validate checks the report against the interchange schema.
// A report must carry both mappings; an empty mapping is valid, a missing
// one is not.
func (r *Report) Validate() error {
	if r.EtherpadURLs == nil {
		return fmt.Errorf("%w: missing etherpad_urls section", ErrMalformedReport)
	}
	if r.PagesWithEtherpads == nil {
		return fmt.Errorf("%w: missing pages_with_etherpads section", ErrMalformedReport)
	}
	return nil
}

// LoadReport reads and validates a links report from disk.
// Any failure here is fatal to the caller: a download run never starts
// from a report it cannot fully parse.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read links report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}
