package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".padarchive"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .padarchive configuration file.
// Every field is optional; zero values leave the built-in defaults alone.
// Durations are written as Go duration strings ("500ms", "2s").
type File struct {
	// PageDelay overrides the pause between paginated API requests.
	PageDelay string `yaml:"pageDelay,omitempty"`

	// RequestDelay overrides the pause after each download attempt.
	RequestDelay string `yaml:"requestDelay,omitempty"`

	// Timeout overrides the per-request timeout of the downloader.
	Timeout string `yaml:"timeout,omitempty"`

	// FinderUserAgent overrides the User-Agent for API requests.
	FinderUserAgent string `yaml:"finderUserAgent,omitempty"`

	// ArchiverUserAgent overrides the User-Agent for export requests.
	ArchiverUserAgent string `yaml:"archiverUserAgent,omitempty"`

	// Shortcuts adds wiki shortcuts to the built-in table.
	// Keys are shortcut names, values are full API URLs.
	Shortcuts map[string]string `yaml:"shortcuts,omitempty"`
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that matters based on whether the path was given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .padarchive in the current directory
//  3. Look for .padarchive in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply merges file overrides into the config. Unset file fields leave
// the corresponding config values untouched; malformed durations are
// reported rather than silently ignored.
func (c *Config) Apply(cf *File) error {
	if cf == nil {
		return nil
	}

	if cf.PageDelay != "" {
		d, err := time.ParseDuration(cf.PageDelay)
		if err != nil {
			return fmt.Errorf("invalid pageDelay in config file: %w", err)
		}
		c.PageDelay = d
	}

	if cf.RequestDelay != "" {
		d, err := time.ParseDuration(cf.RequestDelay)
		if err != nil {
			return fmt.Errorf("invalid requestDelay in config file: %w", err)
		}
		c.RequestDelay = d
	}

	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		c.Timeout = d
	}

	if cf.FinderUserAgent != "" {
		c.FinderUserAgent = cf.FinderUserAgent
	}
	if cf.ArchiverUserAgent != "" {
		c.ArchiverUserAgent = cf.ArchiverUserAgent
	}

	if len(cf.Shortcuts) > 0 {
		if c.Shortcuts == nil {
			c.Shortcuts = make(map[string]string, len(cf.Shortcuts))
		}
		for k, v := range cf.Shortcuts {
			c.Shortcuts[k] = v
		}
	}

	return nil
}
