// Package crawler fetches external-link usage from a MediaWiki API.
// It pages through the exturlusage query list per URL protocol, following
// continuation tokens until the API reports no more results, with a fixed
// politeness delay between requests.
package crawler
