// Package main provides the entry point for the sitescraper CLI.
//
// sitescraper crawls one website, stays on its domain, and saves the
// visible text of every distinct page into a single document.
//
// Usage:
//
//	sitescraper                      # prompts for a domain
//	sitescraper scrape example.com
//	sitescraper scrape -p 200 -f markdown https://example.com/docs/
//
// See --help for all available options.
package main

func main() {
	Execute()
}
