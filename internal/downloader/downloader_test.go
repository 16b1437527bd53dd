package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nethahussain/padarchive/internal/model"
)

// exportServer fakes the Etherpad export endpoint. Pads are addressed as
// /p/<name>/export/txt; the handler map keys on the pad name.
func exportServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[0] != "p" || parts[2] != "export" || parts[3] != "txt" {
			t.Errorf("unexpected export path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h, ok := handlers[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

// rewriteTransport redirects every request to the test server, keeping
// the pad URLs realistic while the export host is faked.
type rewriteTransport struct {
	server *httptest.Server
}

// RoundTrip rewrites the request host to the test server's.
func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(rt.server.URL, "http://")
	return http.DefaultTransport.RoundTrip(req)
}

// testClient returns a client whose requests land on the test server.
func testClient(server *httptest.Server) *http.Client {
	return &http.Client{Transport: rewriteTransport{server: server}}
}

// TestRun tests the sequential per-pad state machine end to end.
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("classifies ok, empty, and failed outcomes", func(t *testing.T) {
		t.Parallel()

		server := exportServer(t, map[string]http.HandlerFunc{
			"hello-pad": func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "hello")
			},
			"empty-pad": func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "   \n")
			},
			"gone-pad": func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		})
		defer server.Close()

		dir := t.TempDir()
		dl := NewDownloader(testClient(server), dir, WithDelay(0))

		result, err := dl.Run(context.Background(), []string{
			"https://etherpad.wikimedia.org/p/empty-pad",
			"https://etherpad.wikimedia.org/p/gone-pad",
			"https://etherpad.wikimedia.org/p/hello-pad",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.DownloadStats{OK: 1, Empty: 1, Failed: 1, Skipped: 0}
		if result.Stats != want {
			t.Errorf("expected stats %+v, got %+v", want, result.Stats)
		}

		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error entry, got %d", len(result.Errors))
		}
		if !strings.Contains(result.Errors[0].Error, "404") {
			t.Errorf("expected error mentioning 404, got %q", result.Errors[0].Error)
		}
		if result.Errors[0].PadName != "gone-pad" {
			t.Errorf("expected error for gone-pad, got %q", result.Errors[0].PadName)
		}

		// Exactly one file with non-empty content; the empty pad's file
		// exists but holds only whitespace.
		content, err := os.ReadFile(filepath.Join(dir, "hello-pad.txt"))
		if err != nil {
			t.Fatalf("expected hello-pad.txt to exist: %v", err)
		}
		if string(content) != "hello" {
			t.Errorf("expected 'hello', got %q", content)
		}

		emptyContent, err := os.ReadFile(filepath.Join(dir, "empty-pad.txt"))
		if err != nil {
			t.Fatalf("expected empty-pad.txt to exist: %v", err)
		}
		if strings.TrimSpace(string(emptyContent)) != "" {
			t.Errorf("expected whitespace-only content, got %q", emptyContent)
		}

		if _, err := os.Stat(filepath.Join(dir, "gone-pad.txt")); !os.IsNotExist(err) {
			t.Error("expected no file for the failed pad")
		}
	})

	t.Run("skips uninterpretable links without a network call", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request for %q", r.URL)
		}))
		defer server.Close()

		dl := NewDownloader(testClient(server), t.TempDir(), WithDelay(0))

		result, err := dl.Run(context.Background(), []string{"https://etherpad.wikimedia.org/p/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stats.Skipped != 1 {
			t.Errorf("expected 1 skipped, got %+v", result.Stats)
		}
	})

	t.Run("resume skips existing non-empty files", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request for %q", r.URL)
		}))
		defer server.Close()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "done-pad.txt"), []byte("archived"), 0600); err != nil {
			t.Fatal(err)
		}

		dl := NewDownloader(testClient(server), dir, WithDelay(0), WithResume(true))

		result, err := dl.Run(context.Background(), []string{"https://etherpad.wikimedia.org/p/done-pad"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stats.Skipped != 1 {
			t.Errorf("expected 1 skipped, got %+v", result.Stats)
		}
	})

	t.Run("resume re-downloads empty files", func(t *testing.T) {
		t.Parallel()

		server := exportServer(t, map[string]http.HandlerFunc{
			"retry-pad": func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "content this time")
			},
		})
		defer server.Close()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "retry-pad.txt"), nil, 0600); err != nil {
			t.Fatal(err)
		}

		dl := NewDownloader(testClient(server), dir, WithDelay(0), WithResume(true))

		result, err := dl.Run(context.Background(), []string{"https://etherpad.wikimedia.org/p/retry-pad"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stats.OK != 1 {
			t.Errorf("expected the empty file to be re-downloaded, got %+v", result.Stats)
		}
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		server := exportServer(t, map[string]http.HandlerFunc{
			"ua-pad": func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("User-Agent"); got != "TestArchiver/1.0" {
					t.Errorf("expected User-Agent 'TestArchiver/1.0', got %q", got)
				}
				fmt.Fprint(w, "ok")
			},
		})
		defer server.Close()

		dl := NewDownloader(testClient(server), t.TempDir(), WithDelay(0), WithUserAgent("TestArchiver/1.0"))
		if _, err := dl.Run(context.Background(), []string{"https://etherpad.wikimedia.org/p/ua-pad"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reports progress events in order", func(t *testing.T) {
		t.Parallel()

		server := exportServer(t, map[string]http.HandlerFunc{
			"one": func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "x") },
		})
		defer server.Close()

		var labels []string
		dl := NewDownloader(testClient(server), t.TempDir(), WithDelay(0),
			WithProgress(func(ev Event) {
				labels = append(labels, ev.Label)
			}))

		_, err := dl.Run(context.Background(), []string{
			"https://etherpad.wikimedia.org/p/",
			"https://etherpad.wikimedia.org/p/one",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(labels) != 2 || labels[0] != LabelSkip || labels[1] != LabelOK {
			t.Errorf("unexpected label sequence %v", labels)
		}
	})

	t.Run("cancelled context returns partial result", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dl := NewDownloader(http.DefaultClient, t.TempDir(), WithDelay(0))
		if _, err := dl.Run(ctx, []string{"https://etherpad.wikimedia.org/p/x"}); err == nil {
			t.Error("expected context error")
		}
	})
}

// TestWriteLogAndManifest tests the persisted run records.
func TestWriteLogAndManifest(t *testing.T) {
	t.Parallel()

	server := exportServer(t, map[string]http.HandlerFunc{
		"good": func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "content") },
		"bad":  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
	})
	defer server.Close()

	dir := t.TempDir()
	dl := NewDownloader(testClient(server), dir, WithDelay(0))

	urls := []string{
		"https://etherpad.wikimedia.org/p/bad",
		"https://etherpad.wikimedia.org/p/good",
	}
	result, err := dl.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logPath, err := dl.WriteLog(result, "links.json", len(urls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manifestPath, err := dl.WriteManifest(result, "links.json", len(urls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var log model.DownloadLog
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &log); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if log.Stats.Failed != 1 || log.Stats.OK != 1 {
		t.Errorf("unexpected log stats %+v", log.Stats)
	}
	if len(log.Errors) != 1 || !strings.Contains(log.Errors[0].Error, "500") {
		t.Errorf("unexpected log errors %+v", log.Errors)
	}
	if log.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}

	var manifest model.Manifest
	data, err = os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	// The log and manifest themselves are excluded from the listing.
	if len(manifest.Files) != 1 || manifest.Files[0] != "good.txt" {
		t.Errorf("unexpected manifest files %v", manifest.Files)
	}
	if manifest.Downloaded != 1 || manifest.Failed != 1 {
		t.Errorf("unexpected manifest counters %+v", manifest)
	}
}

// TestDefaultOutputDir tests output directory derivation.
func TestDefaultOutputDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"output/wikimania_wikimedia_etherpad_links.json", filepath.Join("downloaded_pads", "wikimania_wikimedia")},
		{"meta_wikimedia_etherpad_links.json", filepath.Join("downloaded_pads", "meta_wikimedia")},
		{"some_report.json", filepath.Join("downloaded_pads", "some_report")},
	}

	for _, tt := range tests {
		if got := DefaultOutputDir(tt.in); got != tt.want {
			t.Errorf("DefaultOutputDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
