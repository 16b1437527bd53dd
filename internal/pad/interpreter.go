package pad

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Host is the Etherpad service host all export URLs point at.
const Host = "etherpad.wikimedia.org"

// legacyPathPrefix is the path prefix of the pre-Lite Etherpad URL scheme,
// e.g. http://etherpad.wikimedia.org/ep/pad/view/ro.xxx/latest.
const legacyPathPrefix = "ep/pad/view/"

// maxFilenameLen caps the sanitized pad name (before the ".txt" suffix).
const maxFilenameLen = 200

// unsafeChars matches every character that may not appear in a safe
// filename. Only ASCII letters, digits, underscore, dot, and hyphen
// survive sanitization.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Info describes one downloadable pad, derived deterministically from an
// archived link. A nil Info means the link carries no pad name and the
// downloader must skip it.
type Info struct {
	// Name is the canonical pad identifier.
	Name string

	// ExportURL is the plaintext-export endpoint for the pad.
	ExportURL string

	// SafeFilename is the sanitized output filename, ending in ".txt".
	SafeFilename string

	// OriginalURL is the link as it appeared in the report, with
	// trailing slashes trimmed.
	OriginalURL string
}

// Interpret derives pad info from an archived link.
//
// Rules, in priority order:
//  1. A "/p/" segment: the pad name is everything after it.
//  2. A link on the Etherpad host: a legacy "ep/pad/view/" path is
//     normalized (prefix stripped, trailing "/latest" dropped, remaining
//     slashes folded to underscores); any other non-empty remainder that
//     is not exactly "p" is the pad name itself.
//  3. Otherwise, or when the derived name is blank, the link is not
//     downloadable and Interpret returns nil.
func Interpret(link string) *Info {
	link = strings.TrimRight(link, "/")

	var name string

	if _, after, ok := strings.Cut(link, "/p/"); ok {
		name = after
	} else if _, remainder, ok := strings.Cut(link, Host+"/"); ok {
		if strings.HasPrefix(remainder, legacyPathPrefix) {
			name = strings.TrimPrefix(remainder, legacyPathPrefix)
			name = strings.TrimSuffix(name, "/latest")
			name = strings.ReplaceAll(name, "/", "_")
		} else if remainder != "" && remainder != "p" {
			name = remainder
		}
	}

	if strings.TrimSpace(name) == "" {
		return nil
	}

	return &Info{
		Name:         name,
		ExportURL:    fmt.Sprintf("https://%s/p/%s/export/txt", Host, name),
		SafeFilename: safeFilename(name),
		OriginalURL:  link,
	}
}

// safeFilename turns a pad name into a filesystem-safe filename.
// The name is URL-decoded, every unsafe character is replaced with an
// underscore, and the result is truncated before appending ".txt".
// Collisions remain possible; the mapping is safe, not injective.
func safeFilename(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		decoded = name
	}

	safe := unsafeChars.ReplaceAllString(decoded, "_")
	if len(safe) > maxFilenameLen {
		safe = safe[:maxFilenameLen]
	}
	return safe + ".txt"
}
