package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitescraper/internal/model"
)

// MarkdownWriter outputs the scrape as a Markdown document: a summary table,
// a pie chart of page outcomes and one section per saved page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the document.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeOutcomes(md, result)
	w.writePages(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Website Scrape: " + result.Domain)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", result.Seed},
			{"Date", w.stamp(result).Format(dateLayout)},
			{"Pages scraped", strconv.Itoa(result.Visited)},
			{"Pages saved", strconv.Itoa(result.Saved())},
			{"Duration", result.Duration().Round(time.Millisecond).String()},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")

	if result.Interrupted() {
		md.Warningf("The crawl was interrupted after %d page(s). Only pages scraped before the interruption are included.", result.Visited)
		md.PlainText("")
	}
}

func statusText(result *model.CrawlResult) string {
	if result.Interrupted() {
		return "Interrupted (partial results)"
	}
	return "Complete"
}

// writeOutcomes summarizes what happened to every visited URL.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Outcomes")
	md.PlainText("")

	counts := []struct {
		label string
		n     int
	}{
		{"Saved", result.Saved()},
		{"Duplicate text", result.Duplicates},
		{"Skipped", result.Skipped},
		{"Failed", result.Failures},
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.label, strconv.Itoa(c.n)})
	}
	md.Table(markdown.TableSet{Header: []string{"Outcome", "Pages"}, Rows: rows})
	md.PlainText("")

	if result.Visited == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcomes"),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		if c.n > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.Records) == 0 {
		md.Note("No page with visible text was found.")
		md.PlainText("")
		return
	}

	for _, record := range result.Records {
		md.H3(record.URL)
		md.PlainText("")
		md.PlainText(record.Text)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [sitescraper](https://github.com/nao1215/sitescraper)*")
}
