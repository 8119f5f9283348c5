package config

import (
	"maps"
	"time"
)

// SiteConfig holds crawl settings for one domain.
type SiteConfig struct {
	// Headers are extra HTTP headers sent with every request to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the page budget. Zero inherits.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Delay overrides the pause between requests, e.g. "1s". Unset inherits;
	// an explicit 0 disables throttling for the site.
	Delay *time.Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// IgnorePatterns are path globs never crawled, e.g. "/admin/*" or "*.pdf".
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns, when set, restrict crawling to matching paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File is the layout of the .sitescraper configuration file.
type File struct {
	// Sites maps a domain ("example.com", or "host:port") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless the site overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the defaults merged with the section for domain.
// Site headers are added to the default headers and win on conflict;
// every other site value that is set replaces the default.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.Sites[domain]
	if !ok {
		return result
	}

	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	if site.MaxPages != 0 {
		result.MaxPages = site.MaxPages
	}
	if site.Delay != nil {
		result.Delay = site.Delay
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}
	return result
}
