// Package pipeline runs scrape jobs.
//
// A job goes through a fixed list of steps: crawl the site, write the
// output document and, when history is enabled, record the run. Steps
// that must survive an interrupt (writing, recording) implement Finisher.
//
// BatchProcessor runs several jobs at once with an errgroup limit; each
// crawl itself stays strictly sequential.
package pipeline
