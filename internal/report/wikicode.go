package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nethahussain/padarchive/internal/model"
)

// WikicodeWriter renders the report as a MediaWiki document, ready to be
// pasted onto a wiki page: a summary table, a navigation bar, and one
// section per page group with the pad links listed under each page.
//
// Pages are grouped by 4-digit year prefix when more than half the titles
// carry one (the Wikimania layout), otherwise by leading letter. This is
// a content heuristic carried over from the original inventory tooling;
// it has no correctness guarantee for mixed corpora and is deliberately
// left unchanged.
type WikicodeWriter struct {
	baseWriter

	// baseURL is the wiki's article-view URL prefix.
	baseURL string

	// label is the wiki's short display label.
	label string
}

// NewWikicodeWriter creates a WikicodeWriter for the given wiki.
func NewWikicodeWriter(output io.Writer, baseURL, label string) *WikicodeWriter {
	return &WikicodeWriter{
		baseWriter: newBaseWriter(output),
		baseURL:    baseURL,
		label:      label,
	}
}

// Write renders the full wikicode document.
func (w *WikicodeWriter) Write(report *model.Report) (int, error) {
	pages := report.PageTitles()
	yearMode := yearPrefixedMajority(pages)
	groups := groupPages(pages, yearMode)

	groupKeys := make([]string, 0, len(groups))
	for g := range groups {
		groupKeys = append(groupKeys, g)
	}
	sort.Strings(groupKeys)

	// Local wikilinks only make sense when the document lands on the
	// wiki it describes; Meta-Wiki is where these inventories live.
	isMeta := strings.Contains(w.baseURL, "meta.wikimedia.org")

	var sb strings.Builder

	fmt.Fprintf(&sb, "= Etherpad Links on %s =\n\n", w.label)
	fmt.Fprintf(&sb,
		"This page catalogs all external links to <code>etherpad.wikimedia.org</code> "+
			"found on [%s %s]. Wikimedia Foundation is phasing out Etherpad; this "+
			"inventory is intended to facilitate archiving before the service is "+
			"discontinued.\n\n",
		w.baseURL, w.label)

	w.writeSummaryTable(&sb, report.Summary)
	w.writeNavBar(&sb, groupKeys, yearMode)
	sb.WriteString("__TOC__\n\n")

	for _, group := range groupKeys {
		w.writeSection(&sb, report, groups[group], group, yearMode, isMeta)
	}

	return io.WriteString(w.output, sb.String())
}

// writeSummaryTable renders the headline counts as a wikitable.
func (w *WikicodeWriter) writeSummaryTable(sb *strings.Builder, s model.Summary) {
	sb.WriteString("{| class=\"wikitable\"\n|-\n! Statistic !! Count\n")
	fmt.Fprintf(sb, "|-\n| Unique Etherpad URLs || '''%s'''\n", humanize.Comma(int64(s.UniqueEtherpadURLs)))
	fmt.Fprintf(sb, "|-\n| Wiki pages with Etherpad links || '''%s'''\n", humanize.Comma(int64(s.UniqueWikiPages)))
	fmt.Fprintf(sb, "|-\n| Total link instances (incl. duplicates) || '''%s'''\n", humanize.Comma(int64(s.TotalResults)))
	sb.WriteString("|}\n\n")
}

// writeNavBar renders the centered navigation bar linking each group.
func (w *WikicodeWriter) writeNavBar(sb *strings.Builder, groupKeys []string, yearMode bool) {
	navParts := make([]string, 0, len(groupKeys))
	for _, g := range groupKeys {
		title := sectionTitle(g, yearMode)
		anchor := strings.ReplaceAll(title, " ", "_")
		navParts = append(navParts, fmt.Sprintf("[[#%s|%s]]", anchor, title))
	}

	fmt.Fprintf(sb,
		"<div style=\"text-align:center; background:#f8f9fa; border:1px solid #a2a9b1; "+
			"padding:8px; margin:10px 0; font-size:120%%;\">\n'''Navigate:''' %s\n</div>\n\n",
		strings.Join(navParts, " '''·''' "))
}

// writeSection renders one page group with its pad links.
func (w *WikicodeWriter) writeSection(sb *strings.Builder, report *model.Report, pages []string, group string, yearMode, isMeta bool) {
	sort.Strings(pages)

	urlCount := 0
	for _, p := range pages {
		urlCount += len(report.PagesWithEtherpads[p])
	}

	fmt.Fprintf(sb, "\n== %s ==\n", sectionTitle(group, yearMode))
	fmt.Fprintf(sb, "'''%d''' pages, '''%d''' Etherpad links\n\n", len(pages), urlCount)

	for _, page := range pages {
		if isMeta {
			fmt.Fprintf(sb, "=== [[%s]] ===\n", page)
		} else {
			safe := escapeTitle(strings.ReplaceAll(page, " ", "_"))
			fmt.Fprintf(sb, "=== [%s%s %s] ===\n", w.baseURL, safe, page)
		}

		for _, u := range report.PagesWithEtherpads[page] {
			fmt.Fprintf(sb, "* [%s %s]\n", u, u)
		}
		sb.WriteString("\n")
	}
}

// sectionTitle maps a group key to its section heading.
// In year mode the numeric groups read as Wikimania editions.
func sectionTitle(group string, yearMode bool) string {
	if yearMode && isDigits(group) {
		return "Wikimania " + group
	}
	return group
}

// yearPrefixedMajority reports whether more than half the titles start
// with a 4-digit year.
func yearPrefixedMajority(pages []string) bool {
	count := 0
	for _, p := range pages {
		if hasYearPrefix(p) {
			count++
		}
	}
	return count*2 > len(pages)
}

// groupPages buckets page titles for the section layout.
// Year mode groups by year prefix, with non-year titles falling back to
// their namespace prefix or "Other". Letter mode groups by the
// uppercased first letter.
func groupPages(pages []string, yearMode bool) map[string][]string {
	groups := make(map[string][]string)

	for _, page := range pages {
		var key string
		switch {
		case yearMode && hasYearPrefix(page):
			key = page[:4]
		case yearMode:
			if prefix, _, ok := strings.Cut(page, ":"); ok {
				key = prefix
			} else {
				key = "Other"
			}
		case page == "":
			key = "?"
		default:
			key = strings.ToUpper(string([]rune(page)[0]))
		}
		groups[key] = append(groups[key], page)
	}

	return groups
}

// hasYearPrefix reports whether a title starts with 4 digits.
func hasYearPrefix(page string) bool {
	return len(page) >= 4 && isDigits(page[:4])
}

// isDigits reports whether s is non-empty and entirely ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// titleSafeBytes are the bytes, beyond letters and digits, that are left
// unescaped in external page links. The set matches MediaWiki's tolerant
// handling of title characters in URLs.
const titleSafeBytes = "/:@!$&'()*+,;=-._~"

// escapeTitle percent-encodes a page title for use in an external link,
// leaving titleSafeBytes and ASCII alphanumerics intact. Non-ASCII
// characters are encoded byte-wise as UTF-8.
func escapeTitle(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isTitleSafe(b) {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return sb.String()
}

// isTitleSafe reports whether a byte may appear raw in an external link.
func isTitleSafe(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return strings.IndexByte(titleSafeBytes, b) >= 0
}
