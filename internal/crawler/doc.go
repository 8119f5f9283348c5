// Package crawler walks a single website breadth-first and collects the
// visible text of each page.
//
// The Engine owns all crawl state for the duration of one Run: a FIFO
// Frontier of discovered URLs, the set of visited URLs and the set of text
// hashes already saved. URLs are identified by their Normalize form (query
// and fragment removed) and only links whose host equals the seed's host
// are followed (InScope).
//
// For each dequeued URL the engine:
//
//  1. skips it if it was already visited, otherwise marks it visited
//  2. waits on the politeness Throttle (the delay counts from the end of the previous fetch)
//  3. fetches it, logging and moving on if the fetch fails
//  4. skips non-HTML responses
//  5. extracts text and links, skipping pages with no text (their links are dropped)
//  6. saves a PageRecord unless the same text was already saved
//  7. enqueues the page's in-scope links
//
// A URL is fetched at most once per Run, and the number of visited URLs never
// exceeds the page budget.
//
// # Usage
//
//	engine := crawler.NewEngine(fetch.NewHTTPFetcher(), extract.NewHTMLExtractor(),
//		crawler.WithMaxPages(200))
//	result, err := engine.Run(ctx, "https://example.com")
package crawler
