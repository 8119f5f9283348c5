package crawler

import (
	"net/url"
	"strings"
)

// Normalize returns rawURL without its query string and fragment.
// Scheme, host, port and path are left untouched, so two URLs that differ
// only after '?' or '#' normalize to the same string.
//
// Normalize never fails. Input that net/url cannot parse is cut at the first
// '#' and then at the first '?'.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		s, _, _ := strings.Cut(rawURL, "#")
		s, _, _ = strings.Cut(s, "?")
		return s
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// InScope reports whether normalized belongs to domain.
// The URL must have a host, and the host (port included) must equal domain
// exactly. Subdomains are out of scope and the scheme is not checked.
func InScope(normalized, domain string) bool {
	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == domain
}
