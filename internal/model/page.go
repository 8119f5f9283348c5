package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// PageRecord is the text extracted from one page that passed both the
// content-type check and the duplicate-content check.
// A record is created exactly once and never modified afterwards.
type PageRecord struct {
	// URL is the normalized URL of the page (query and fragment removed).
	URL string `json:"url"`

	// Text is the visible text extracted from the page, one chunk per line.
	Text string `json:"text"`

	// ContentHash is the hex-encoded SHA-256 of Text.
	// Two records in the same crawl never share a hash.
	ContentHash string `json:"content_hash"`

	// FetchedAt is when the page body was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPageRecord builds a PageRecord and fills in its content hash.
func NewPageRecord(url, text string, fetchedAt time.Time) PageRecord {
	return PageRecord{
		URL:         url,
		Text:        text,
		ContentHash: HashText(text),
		FetchedAt:   fetchedAt,
	}
}

// HashText returns the hex-encoded SHA-256 digest of text.
// The digest is computed over the exact bytes, so texts that differ only in
// whitespace produce different hashes.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsBlank reports whether text is empty or contains only whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
