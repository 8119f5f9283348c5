package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitescraper/internal/model"
)

// ErrUnknownFormat is returned for an output format name that has no writer.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the output document type.
type Format string

const (
	// FormatText is the plain text document, one block per page.
	FormatText Format = "text"

	// FormatMarkdown is a Markdown document with a summary table.
	FormatMarkdown Format = "markdown"

	// FormatJSON is the crawl result encoded as JSON.
	FormatJSON Format = "json"
)

// Formats lists every supported format, default first.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON}

// ParseFormat converts a format name to a Format. "txt", "md" and the empty
// string are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Extension returns the file extension for the format, without a dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// Writer writes a crawl result as one document.
type Writer interface {
	// Write outputs the document and returns the number of bytes written.
	Write(result *model.CrawlResult) (int, error)
}

// NewWriter returns the Writer for format, writing to output.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter holds what every writer needs.
type baseWriter struct {
	output io.Writer
	now    func() time.Time
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, now: time.Now}
}

// stamp is the time shown in the document header: when the crawl finished,
// or the current time for a result that never ran.
func (b baseWriter) stamp(result *model.CrawlResult) time.Time {
	if !result.FinishedAt.IsZero() {
		return result.FinishedAt
	}
	return b.now()
}
