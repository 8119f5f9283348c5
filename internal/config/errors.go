package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no domain or URL was given.
	ErrNoTarget = errors.New("no target specified: provide a domain or URL to scrape")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidDelay is returned for a negative delay. Use 0 to disable throttling.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the number of concurrent sites is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned for a negative body size limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
