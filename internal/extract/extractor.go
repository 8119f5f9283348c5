package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultRemovedElements are the elements whose text is never part of the
// extracted page text. Links inside them are still collected.
var DefaultRemovedElements = []string{
	"script", "style", "noscript", "template",
	"header", "footer", "nav",
}

// skippedLinkPrefixes are href schemes that never point at a crawlable page.
var skippedLinkPrefixes = []string{
	"javascript:",
	"mailto:",
	"tel:",
	"data:",
}

// Result is what Extract returns for one HTML page.
type Result struct {
	// Text is the visible text, one non-empty chunk per line.
	Text string

	// Links are absolute URLs from every <a href>, in document order.
	// Duplicates are kept; the crawler prunes them.
	Links []string
}

// Extractor turns an HTML body into text and outbound links.
type Extractor interface {
	Extract(body []byte, pageURL string) (*Result, error)
}

// HTMLExtractor implements Extractor with goquery.
type HTMLExtractor struct {
	removed string
}

// Option configures an HTMLExtractor.
type Option func(*HTMLExtractor)

// WithRemovedElements replaces the list of CSS selectors whose text is dropped.
func WithRemovedElements(selectors ...string) Option {
	return func(e *HTMLExtractor) {
		e.removed = strings.Join(selectors, ",")
	}
}

// NewHTMLExtractor creates an HTMLExtractor that drops DefaultRemovedElements.
func NewHTMLExtractor(opts ...Option) *HTMLExtractor {
	e := &HTMLExtractor{
		removed: strings.Join(DefaultRemovedElements, ","),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses body and returns its visible text and outbound links.
// pageURL must be absolute; relative links are resolved against it, or
// against the document's <base href> when present.
func (e *HTMLExtractor) Extract(body []byte, pageURL string) (*Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}
	if !base.IsAbs() {
		return nil, &Error{URL: pageURL, Err: fmt.Errorf("page URL is not absolute")}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	result := &Result{
		Links: collectLinks(doc, base),
	}

	if e.removed != "" {
		doc.Find(e.removed).Remove()
	}
	result.Text = chunkText(joinTextNodes(doc.Selection.Nodes))

	return result, nil
}

// collectLinks resolves every <a href> against base.
func collectLinks(doc *goquery.Document, base *url.URL) []string {
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(base, href); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveURL resolves href against base. It returns "" for hrefs that can
// never lead to a page (script, mail, phone, inline data, bare "#").
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range skippedLinkPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// joinTextNodes concatenates all text nodes below nodes, separated by a single
// space. Comments and doctype nodes are ignored.
func joinTextNodes(nodes []*html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// chunkText trims every line, splits lines on runs of two spaces and joins the
// non-empty chunks with newlines. Text separated by single spaces stays on
// one line; layout whitespace collapses away.
func chunkText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, phrase := range strings.Split(line, "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}
