// Package database keeps an optional history of scrapes in SQLite
// (modernc.org/sqlite, no cgo).
//
// HistoryDB stores one row per run (seed, domain, final state, counters and
// the output file) and one row per saved page (URL, content hash, text
// length). The page text stays in the output document.
package database
