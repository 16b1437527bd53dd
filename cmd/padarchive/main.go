// Package main provides the entry point for the padarchive CLI.
//
// padarchive discovers Etherpad links on Wikimedia wikis and archives
// the pad contents before they expire.
//
// Usage:
//
//	padarchive discover --wiki wikimania
//	padarchive download output/wikimania_wikimedia_etherpad_links.json
//
// See --help for all available options.
package main

// main is the entry point for padarchive.
func main() {
	Execute()
}
