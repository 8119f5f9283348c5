package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/sitescraper/internal/model"
)

// ErrOutputDir is returned when the output directory cannot be created.
var ErrOutputDir = errors.New("cannot create output directory")

// fileStampLayout is the timestamp embedded in output file names.
const fileStampLayout = "20060102_150405"

// maxNameAttempts bounds the "_2", "_3", ... suffixes tried by createUnique.
const maxNameAttempts = 1000

// FileName returns "<domain>_<YYYYMMDD_HHMMSS>.<ext>", with '.' and ':' in
// the domain replaced by '_' so that the name is valid on every platform.
func FileName(domain string, format Format, at time.Time) string {
	safe := strings.NewReplacer(".", "_", ":", "_").Replace(domain)
	return fmt.Sprintf("%s_%s.%s", safe, at.Format(fileStampLayout), format.Extension())
}

// Save writes result to a new file in dir and returns the file's path.
// An existing file is never overwritten: when the name is taken, "_2",
// "_3", ... is inserted before the extension. dir is created if it does
// not exist. A failure to create it wraps
// ErrOutputDir; it is the one error a scrape cannot recover from.
func Save(dir string, result *model.CrawlResult, format Format, opts ...JSONWriterOption) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrOutputDir, dir, err)
	}

	at := result.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}
	f, path, err := createUnique(dir, FileName(result.Domain, format, at))
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := newFileWriter(format, f, opts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if _, err := w.Write(result); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

func newFileWriter(format Format, f *os.File, opts ...JSONWriterOption) (Writer, error) {
	if format == FormatJSON {
		return NewJSONWriter(f, append([]JSONWriterOption{WithPrettyPrint()}, opts...)...), nil
	}
	return NewWriter(format, f)
}

// createUnique creates name in dir, or the first free "<stem>_<n><ext>"
// variant of it, and returns the open file and its path.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // path is built from the output dir and a sanitized name
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: no free name for %s in %s", fs.ErrExist, name, dir)
}
