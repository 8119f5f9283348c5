package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a fetch failed.
// The set is closed: every *Error carries exactly one of these kinds.
type Kind int

const (
	// KindNetwork covers DNS, connection, TLS and read failures.
	KindNetwork Kind = iota

	// KindTimeout means the request did not finish within the fetch timeout.
	KindTimeout

	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
)

// String returns the wire name of the kind, used in logs and summaries.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http_error"
	default:
		return "unknown"
	}
}

// Error is returned by Fetcher implementations for every failed fetch.
type Error struct {
	// Kind is the failure class.
	Kind Kind

	// URL is the URL that was requested.
	URL string

	// StatusCode is set for KindHTTP.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTP:
		return fmt.Sprintf("fetch %s: %s: %d %s", e.URL, e.Kind, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newTransportError classifies an error returned by http.Client.Do.
func newTransportError(url string, err error) *Error {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: url, Err: err}
}

// newStatusError builds a KindHTTP error for a non-2xx response.
func newStatusError(url string, status int) *Error {
	return &Error{Kind: KindHTTP, URL: url, StatusCode: status}
}

// KindOf returns the Kind of err if it wraps a *Error.
// The second return value is false for any other error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return KindNetwork, false
}

// Proxy connectivity errors.
var (
	// ErrInvalidProxyAddress is returned when the proxy is not "host:port"
	// or a socks5:// URL.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port or socks5://[user:pass@]host:port")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not speak SOCKS5.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy can be made.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy handshake times out.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// ProxyStatus is the result of checking a SOCKS5 proxy.
type ProxyStatus int

const (
	// ProxyStatusOK indicates a working SOCKS5 proxy.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the peer answered but not as a usable SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates the TCP connection failed.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the handshake timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for this status, or nil if OK.
func (s ProxyStatus) Err() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS5
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
