package wiki

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// apiPath is the standard MediaWiki API path suffix.
const apiPath = "/w/api.php"

// articlePath is the standard article-view path that replaces apiPath
// when deriving a wiki's base page URL.
const articlePath = "/wiki/"

// builtinShortcuts maps well-known wiki shortcuts to their API endpoints.
var builtinShortcuts = map[string]string{
	"meta":        "https://meta.wikimedia.org/w/api.php",
	"wikimania":   "https://wikimania.wikimedia.org/w/api.php",
	"commons":     "https://commons.wikimedia.org/w/api.php",
	"wikidata":    "https://www.wikidata.org/w/api.php",
	"mediawiki":   "https://www.mediawiki.org/w/api.php",
	"wikibooks":   "https://en.wikibooks.org/w/api.php",
	"wikisource":  "https://en.wikisource.org/w/api.php",
	"wikinews":    "https://en.wikinews.org/w/api.php",
	"wikiquote":   "https://en.wikiquote.org/w/api.php",
	"wikiversity": "https://en.wikiversity.org/w/api.php",
	"wikivoyage":  "https://en.wikivoyage.org/w/api.php",
	"wiktionary":  "https://en.wiktionary.org/w/api.php",
	"species":     "https://species.wikimedia.org/w/api.php",
	"incubator":   "https://incubator.wikimedia.org/w/api.php",
	"outreach":    "https://outreach.wikimedia.org/w/api.php",
	"wikitech":    "https://wikitech.wikimedia.org/w/api.php",
}

// sisterProjects are the project names accepted in "lang.project" patterns.
var sisterProjects = map[string]bool{
	"wikipedia":   true,
	"wikibooks":   true,
	"wikisource":  true,
	"wikinews":    true,
	"wikiquote":   true,
	"wikiversity": true,
	"wikivoyage":  true,
	"wiktionary":  true,
}

// Endpoint describes a resolved wiki: the MediaWiki API URL to query, the
// article-view base URL used when building page links, and a short label
// used as the output filename prefix.
type Endpoint struct {
	// APIURL is the MediaWiki API endpoint (".../w/api.php").
	APIURL string

	// BaseURL is the article-view URL prefix (".../wiki/").
	BaseURL string

	// Label is a filesystem-safe short name derived from the API host,
	// e.g. "meta_wikimedia" for meta.wikimedia.org.
	Label string
}

// Resolver maps wiki shortcuts to API endpoints. User-defined shortcuts
// from the config file take precedence over the built-in table.
type Resolver struct {
	shortcuts map[string]string
}

// NewResolver creates a Resolver with the built-in shortcut table merged
// with the given extra shortcuts. Extra entries override built-ins.
func NewResolver(extra map[string]string) *Resolver {
	shortcuts := make(map[string]string, len(builtinShortcuts)+len(extra))
	for k, v := range builtinShortcuts {
		shortcuts[k] = v
	}
	for k, v := range extra {
		shortcuts[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Resolver{shortcuts: shortcuts}
}

// Resolve maps a wiki shortcut or name pattern to an Endpoint.
//
// Resolution rules, in order:
//  1. A known shortcut maps to its table entry verbatim.
//  2. "lang.project" with a known sister project maps to
//     https://{lang}.{project}.org/w/api.php; "lang.wikimedia" maps to
//     https://{lang}.wikimedia.org/w/api.php.
//  3. Anything else is treated as a Wikipedia language code.
//
// No network validation happens here; a bogus name simply yields an
// endpoint that returns HTTP errors during fetching.
func (r *Resolver) Resolve(name string) Endpoint {
	name = strings.ToLower(strings.TrimSpace(name))

	if api, ok := r.shortcuts[name]; ok {
		return FromAPIURL(api)
	}

	if lang, project, ok := strings.Cut(name, "."); ok {
		if sisterProjects[project] {
			return FromAPIURL(fmt.Sprintf("https://%s.%s.org/w/api.php", lang, project))
		}
		if project == "wikimedia" {
			return FromAPIURL(fmt.Sprintf("https://%s.wikimedia.org/w/api.php", lang))
		}
	}

	return FromAPIURL(fmt.Sprintf("https://%s.wikipedia.org/w/api.php", name))
}

// Shortcuts returns the sorted list of known shortcut names.
// Used for help text.
func (r *Resolver) Shortcuts() []string {
	names := make([]string, 0, len(r.shortcuts))
	for name := range r.shortcuts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromAPIURL builds an Endpoint from an explicit MediaWiki API URL.
// The base URL substitutes the article-view path for the API path, and
// the label is derived from the host: strip ".org", replace dots with
// underscores, and drop a leading "www_".
func FromAPIURL(apiURL string) Endpoint {
	return Endpoint{
		APIURL:  apiURL,
		BaseURL: strings.Replace(apiURL, apiPath, articlePath, 1),
		Label:   labelFor(apiURL),
	}
}

// labelFor derives a short filename label from an API URL's host.
func labelFor(apiURL string) string {
	host := ""
	if u, err := url.Parse(apiURL); err == nil {
		host = u.Hostname()
	}

	label := strings.TrimSuffix(host, ".org")
	label = strings.ReplaceAll(label, ".", "_")
	label = strings.TrimPrefix(label, "www_")
	if label == "" {
		return "wiki"
	}
	return label
}
