// Package pad interprets archived Etherpad links. It derives the canonical
// pad name, the plaintext-export endpoint, and a filesystem-safe filename
// from a pad URL, including URLs in the legacy "ep/pad/view" scheme.
package pad
