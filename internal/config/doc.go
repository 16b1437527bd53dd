// Package config provides configuration structures and utilities for
// padarchive. It defines the options of the discovery and download
// pipelines, validation of CLI input, and the optional yaml config file
// that carries default overrides and user-defined wiki shortcuts.
package config
