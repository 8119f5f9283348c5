// Package report turns a crawl result into an output document.
//
// Writers exist for three formats:
//   - TextWriter: the plain text scrape document (default)
//   - MarkdownWriter: a summary table and one section per page
//   - JSONWriter: the crawl result as JSON, for other tools
//
// Save names the file after the domain and the crawl time and writes it to
// the output directory.
package report
