package extract

import "fmt"

// Error reports that a page could not be parsed.
type Error struct {
	// URL is the page that failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
