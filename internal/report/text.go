package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitescraper/internal/model"
)

const (
	// headerRuleWidth is the width of the '=' line that ends the header.
	headerRuleWidth = 80

	// dateLayout is the header date format.
	dateLayout = "2006-01-02 15:04:05"
)

// TextWriter writes the plain text scrape document:
//
//	Website Scrape: <seed>
//	Date: <YYYY-MM-DD HH:MM:SS>
//	Pages scraped: <visited>
//	================ ... (80 wide)
//
// followed by a blank line and, for every record,
//
//	<blank line>
//	<blank line>
//	=== <url> ===
//	<text>
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document.
func (w *TextWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Website Scrape: %s\n", result.Seed)
	fmt.Fprintf(&sb, "Date: %s\n", w.stamp(result).Format(dateLayout))
	fmt.Fprintf(&sb, "Pages scraped: %d\n", result.Visited)
	sb.WriteString(strings.Repeat("=", headerRuleWidth))
	sb.WriteString("\n\n")

	for _, record := range result.Records {
		sb.WriteString(PageBlock(record))
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// PageBlock returns the section for one record, without its trailing newline.
func PageBlock(record model.PageRecord) string {
	return fmt.Sprintf("\n\n=== %s ===\n%s", record.URL, record.Text)
}
