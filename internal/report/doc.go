// Package report provides the output formats of the discovery pipeline.
//
// Each writer consumes the finalized link report and performs a single
// deterministic write:
//   - JSONWriter: the full structured report (the interchange format)
//   - URLListWriter: one pad URL per line, sorted
//   - CSVWriter: one row per (page, URL) pair with the page's article URL
//   - WikicodeWriter: a navigable MediaWiki document, ready to paste
//   - MarkdownWriter: a GitHub-flavored summary document
//
// Writers are independent and order-insensitive; any subset can be run.
package report
