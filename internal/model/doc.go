// Package model defines the core data structures shared by sitescraper packages.
//
// This package contains the following main types:
//   - PageRecord: the extracted text of one saved page
//   - CrawlResult: everything a single crawl produced, handed to report writers
//   - CrawlState: the lifecycle of a crawl (idle, running, completed, interrupted)
//   - Progress: a per-URL event emitted while a crawl is running
//   - Job: one scrape target travelling through the pipeline
//
// Models live in their own package so that crawler, report, database and
// pipeline can all depend on them without import cycles. All types are
// serializable to JSON for the JSON report and the history database.
package model
