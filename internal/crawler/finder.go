package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nethahussain/padarchive/internal/model"
)

// protocols are the URL schemes the exturlusage API is queried for.
// The API filters by protocol, so both must be asked separately to find
// links recorded before the wiki switched to https.
var protocols = []string{"http", "https"}

// pageLimit is the per-request result limit. 500 is the maximum the
// MediaWiki API grants unauthenticated clients.
const pageLimit = "500"

// Finder pages through a wiki's external-URL-usage API and accumulates
// raw link hits. One network call is in flight at a time; a fixed delay
// separates consecutive pages.
type Finder struct {
	// client performs the HTTP requests.
	client *http.Client

	// delay is the pause between paginated requests.
	delay time.Duration

	// userAgent identifies the tool to the API.
	userAgent string

	// logger records per-request failures.
	logger *slog.Logger

	// progress, when set, is called after every fetched page.
	progress ProgressFunc
}

// ProgressFunc receives per-page progress: the protocol being queried,
// the number of hits on this page, and the running total.
type ProgressFunc func(protocol string, pageHits, total int)

// Option configures a Finder.
type Option func(*Finder)

// WithDelay sets the pause between paginated requests.
func WithDelay(d time.Duration) Option {
	return func(f *Finder) {
		f.delay = d
	}
}

// WithUserAgent sets the User-Agent header sent with API requests.
func WithUserAgent(ua string) Option {
	return func(f *Finder) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger for per-request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithProgress sets a callback invoked after every fetched page.
func WithProgress(fn ProgressFunc) Option {
	return func(f *Finder) {
		f.progress = fn
	}
}

// NewFinder creates a Finder with the given HTTP client.
// The client is injected so tests can point it at a fake API server.
func NewFinder(client *http.Client, opts ...Option) *Finder {
	f := &Finder{
		client:    client,
		delay:     500 * time.Millisecond,
		userAgent: "padarchive",
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// exturlResponse is the wire format of one exturlusage API page.
// The continuation block is absent on the last page.
type exturlResponse struct {
	Query struct {
		ExtURLUsage []model.RawLink `json:"exturlusage"`
	} `json:"query"`
	Continue *struct {
		EUContinue string `json:"eucontinue"`
	} `json:"continue"`
}

// FetchAll collects every raw hit for the query across both protocols.
//
// A request failure (transport error, non-200 status, or a body that does
// not decode) aborts pagination for the current protocol only: hits
// already collected for it are kept, the failure is logged, and the next
// protocol is tried. Only context cancellation returns an error, and even
// then the hits gathered so far are returned alongside it.
func (f *Finder) FetchAll(ctx context.Context, apiURL, query string) ([]model.RawLink, error) {
	all := make([]model.RawLink, 0)

	for _, protocol := range protocols {
		continueToken := ""
		for {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			default:
			}

			page, err := f.fetchPage(ctx, apiURL, query, protocol, continueToken)
			if err != nil {
				f.logger.Error("exturlusage request failed",
					"protocol", protocol,
					"error", err,
				)
				break
			}

			all = append(all, page.Query.ExtURLUsage...)
			if f.progress != nil {
				f.progress(protocol, len(page.Query.ExtURLUsage), len(all))
			}

			if page.Continue == nil || page.Continue.EUContinue == "" {
				break
			}
			continueToken = page.Continue.EUContinue

			if f.delay > 0 {
				select {
				case <-ctx.Done():
					return all, ctx.Err()
				case <-time.After(f.delay):
				}
			}
		}
	}

	return all, nil
}

// fetchPage issues one exturlusage query and decodes the response.
func (f *Finder) fetchPage(ctx context.Context, apiURL, query, protocol, continueToken string) (*exturlResponse, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "exturlusage")
	params.Set("euquery", query)
	params.Set("eulimit", pageLimit)
	params.Set("euprotocol", protocol)
	params.Set("format", "json")
	if continueToken != "" {
		params.Set("eucontinue", continueToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Best effort drain
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var page exturlResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	return &page, nil
}
