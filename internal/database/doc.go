// Package database provides SQLite-based storage for run history.
// Every discovery and download run is recorded so past crawls can be
// inspected without re-reading their output directories.
package database
