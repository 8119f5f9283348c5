package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// readBody decompresses body according to contentEncoding and reads at most
// limit bytes of the decoded stream. Anything beyond limit is dropped.
func readBody(body io.Reader, contentEncoding string, limit int64) ([]byte, error) {
	reader := body
	var closer io.Closer

	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader, closer = gz, gz
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		buffered := bufferedPeek(body)
		if zr, err := zlib.NewReader(buffered); err == nil {
			reader, closer = zr, zr
		} else {
			fl := flate.NewReader(buffered.rewind())
			reader, closer = fl, fl
		}
	case "br":
		reader = brotli.NewReader(body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}

	if closer != nil {
		defer closer.Close()
	}

	data, err := io.ReadAll(io.LimitReader(reader, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// peekReader remembers the first bytes it hands out so a failed zlib header
// probe can be replayed into a raw flate reader.
type peekReader struct {
	src  io.Reader
	seen bytes.Buffer
}

func bufferedPeek(r io.Reader) *peekReader {
	return &peekReader{src: r}
}

func (p *peekReader) Read(b []byte) (int, error) {
	n, err := p.src.Read(b)
	p.seen.Write(b[:n])
	return n, err
}

// rewind returns a reader that yields the already-consumed bytes followed by
// the rest of the source.
func (p *peekReader) rewind() io.Reader {
	return io.MultiReader(bytes.NewReader(p.seen.Bytes()), p.src)
}

// toUTF8 converts an HTML body to UTF-8 using the charset declared in the
// Content-Type header, a BOM, or a <meta charset> tag, in that order.
// Bodies that are already UTF-8 are returned unchanged.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return body, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", name, err)
	}
	return decoded, nil
}
