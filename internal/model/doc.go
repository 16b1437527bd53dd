// Package model defines the core data structures shared by both pipelines:
// raw link hits from the MediaWiki API, the aggregated link report that is
// the JSON interchange format between discovery and download, and the
// download log and manifest records persisted at the end of a download run.
package model
