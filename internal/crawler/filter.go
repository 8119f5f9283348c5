package crawler

import (
	"net/url"
	"path"
	"strings"
)

// PathFilter narrows which in-scope links are followed, by URL path.
// Ignore patterns win over follow patterns. An empty filter allows every path.
//
// Patterns use glob syntax:
//   - "/admin/*" matches "/admin" and anything below it
//   - "*.pdf" matches any path ending in ".pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
type PathFilter struct {
	ignore []string
	follow []string
}

// NewPathFilter creates a PathFilter.
func NewPathFilter(ignore, follow []string) *PathFilter {
	return &PathFilter{ignore: ignore, follow: follow}
}

// Allow reports whether the link at rawURL may be enqueued.
func (f *PathFilter) Allow(rawURL string) bool {
	if f == nil || (len(f.ignore) == 0 && len(f.follow) == 0) {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	urlPath := u.Path
	if urlPath == "" {
		urlPath = "/"
	}

	for _, pattern := range f.ignore {
		if matchPattern(pattern, urlPath) {
			return false
		}
	}
	if len(f.follow) == 0 {
		return true
	}
	for _, pattern := range f.follow {
		if matchPattern(pattern, urlPath) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, urlPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*."); ok && !strings.ContainsAny(ext, "*?[") {
		if strings.HasSuffix(urlPath, "."+ext) {
			return true
		}
	}

	if matched, err := path.Match(pattern, urlPath); err == nil && matched {
		return true
	}

	// Bare file patterns ("report-*.html") are tried against the last segment.
	if !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(urlPath)); err == nil && matched {
			return true
		}
	}
	return false
}
