// Package wiki resolves wiki shortcuts and language-code patterns to
// MediaWiki API endpoints. Resolution is purely textual: an invalid
// shortcut produces a syntactically valid endpoint that fails later at
// the HTTP layer.
package wiki
