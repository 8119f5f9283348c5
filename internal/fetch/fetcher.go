package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Default fetcher settings.
const (
	// DefaultTimeout bounds a single request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize caps the decoded body size. Larger bodies are truncated.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is a desktop browser User-Agent; some sites serve
	// reduced markup to unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Response is a successfully fetched page.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status (always 2xx).
	StatusCode int

	// ContentType is the raw Content-Type header value.
	ContentType string

	// Body is the decoded, UTF-8 body, truncated to the fetcher's size limit.
	Body []byte

	// FetchedAt is when the body finished downloading.
	FetchedAt time.Time
}

// IsHTML reports whether the response declares an HTML media type.
func (r *Response) IsHTML() bool {
	return IsHTML(r.ContentType)
}

// IsHTML reports whether contentType names text/html or application/xhtml+xml.
// Parameters such as charset are ignored and the comparison is case-insensitive.
func IsHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Fetcher retrieves one page at a time.
// Implementations return a *Error for every failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	timeout     time.Duration
	proxy       *Proxy
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds extra request headers. Later calls add to earlier ones.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the maximum number of decoded body bytes kept.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithProxy routes all requests through the given SOCKS5 proxy.
func WithProxy(p *Proxy) Option {
	return func(f *HTTPFetcher) {
		f.proxy = p
	}
}

// WithHTTPClient replaces the HTTP client. The timeout option still applies.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		var transport *http.Transport
		if f.proxy != nil {
			transport = f.proxy.Transport()
		} else {
			transport = newTransport()
			transport.Proxy = http.ProxyFromEnvironment
		}
		f.client = &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return f
}

// Fetch downloads url. Non-2xx responses are returned as KindHTTP errors and
// their bodies are discarded.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	out := &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}

	// Non-HTML bodies are never parsed, so skip the download.
	if !IsHTML(contentType) {
		out.FetchedAt = time.Now()
		return out, nil
	}

	body, err := readBody(resp.Body, resp.Header.Get("Content-Encoding"), f.maxBodySize)
	if err != nil {
		return nil, newTransportError(url, err)
	}
	body, err = toUTF8(body, contentType)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("charset: %w", err)}
	}

	out.Body = body
	out.FetchedAt = time.Now()

	f.logger.Debug("fetched page",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return out, nil
}
