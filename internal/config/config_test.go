package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. Changes to defaults are intentional when these fail.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Wiki is meta", func(t *testing.T) {
		t.Parallel()
		if cfg.Wiki != "meta" {
			t.Errorf("expected Wiki to be 'meta', got %q", cfg.Wiki)
		}
	})

	t.Run("default Query targets the etherpad host", func(t *testing.T) {
		t.Parallel()
		if cfg.Query != "etherpad.wikimedia.org" {
			t.Errorf("expected Query to be 'etherpad.wikimedia.org', got %q", cfg.Query)
		}
	})

	t.Run("default PageDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.PageDelay != 500*time.Millisecond {
			t.Errorf("expected PageDelay to be 500ms, got %v", cfg.PageDelay)
		}
	})

	t.Run("default RequestDelay is 300ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestDelay != 300*time.Millisecond {
			t.Errorf("expected RequestDelay to be 300ms, got %v", cfg.RequestDelay)
		}
	})

	t.Run("default Timeout is 15s", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Formats exclude markdown", func(t *testing.T) {
		t.Parallel()
		for _, f := range cfg.Formats {
			if f == FormatMarkdown {
				t.Error("expected markdown to be opt-in")
			}
		}
		if len(cfg.Formats) != 4 {
			t.Errorf("expected 4 default formats, got %d", len(cfg.Formats))
		}
	})
}

// TestValidateDiscover tests validation of discovery options.
func TestValidateDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"empty query", func(c *Config) { c.Query = "" }, ErrNoQuery},
		{"negative delay", func(c *Config) { c.PageDelay = -time.Second }, ErrInvalidDelay},
		{"no formats", func(c *Config) { c.Formats = nil }, ErrNoFormats},
		{"unknown format", func(c *Config) { c.Formats = []string{"xml"} }, ErrUnknownFormat},
		{"markdown is valid", func(c *Config) { c.Formats = []string{FormatMarkdown} }, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.ValidateDiscover()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestValidateDownload tests validation of download options.
func TestValidateDownload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) { c.InputFile = "links.json" }, nil},
		{"missing input", func(*Config) {}, ErrNoInputFile},
		{"negative delay", func(c *Config) { c.InputFile = "x"; c.RequestDelay = -1 }, ErrInvalidDelay},
		{"zero timeout", func(c *Config) { c.InputFile = "x"; c.Timeout = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.ValidateDownload()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests yaml loading and override application.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads and applies overrides", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
pageDelay: 2s
timeout: 30s
finderUserAgent: "CustomFinder/1.0"
shortcuts:
  mywiki: https://wiki.example.org/w/api.php
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cfg.Apply(cf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.PageDelay != 2*time.Second {
			t.Errorf("expected PageDelay 2s, got %v", cfg.PageDelay)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout 30s, got %v", cfg.Timeout)
		}
		if cfg.RequestDelay != DefaultRequestDelay {
			t.Errorf("expected RequestDelay untouched, got %v", cfg.RequestDelay)
		}
		if cfg.FinderUserAgent != "CustomFinder/1.0" {
			t.Errorf("expected overridden user agent, got %q", cfg.FinderUserAgent)
		}
		if cfg.Shortcuts["mywiki"] != "https://wiki.example.org/w/api.php" {
			t.Errorf("expected shortcut to be loaded, got %v", cfg.Shortcuts)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed duration is rejected on apply", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.Apply(&File{Timeout: "soon"}); err == nil {
			t.Error("expected error for malformed duration")
		}
	})

	t.Run("invalid yaml is rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("\t: bad"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestFindConfigFile tests explicit-path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(""), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
