package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 greeting performed by Proxy.Check.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 protocol constants used by the handshake check.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthPassword = 0x02
	socks5AuthNoAccept = 0xFF
)

// Proxy routes fetches through a SOCKS5 proxy.
type Proxy struct {
	// address is the proxy in "host:port" form.
	address string

	// auth holds optional username/password credentials.
	auth *proxy.Auth

	// dialer is the SOCKS5 dialer built from address and auth.
	dialer proxy.Dialer
}

// NewProxy parses raw and prepares a SOCKS5 dialer.
// raw is either "host:port" or "socks5://[user:pass@]host:port".
// No connection is made; call Check to verify the proxy is reachable.
func NewProxy(raw string) (*Proxy, error) {
	address, auth, err := parseProxyAddr(raw)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.SOCKS5("tcp", address, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Proxy{
		address: address,
		auth:    auth,
		dialer:  dialer,
	}, nil
}

// Address returns the proxy address in "host:port" form, without credentials.
func (p *Proxy) Address() string {
	return p.address
}

// parseProxyAddr splits a proxy string into address and credentials.
func parseProxyAddr(raw string) (string, *proxy.Auth, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		if !isValidProxyAddress(raw) {
			return "", nil, ErrInvalidProxyAddress
		}
		return raw, nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, ErrInvalidProxyAddress
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return "", nil, ErrInvalidProxyAddress
	}
	if !isValidProxyAddress(u.Host) {
		return "", nil, ErrInvalidProxyAddress
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}
	return u.Host, auth, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// Check performs a SOCKS5 greeting against the proxy and reports whether it
// accepted one of the offered authentication methods.
func (p *Proxy) Check(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	greeting := []byte{socks5Version, 0x01, socks5AuthNone}
	if p.auth != nil {
		greeting = []byte{socks5Version, 0x02, socks5AuthNone, socks5AuthPassword}
	}
	if _, err := conn.Write(greeting); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	switch resp[1] {
	case socks5AuthNone:
		return ProxyStatusOK
	case socks5AuthPassword:
		if p.auth != nil {
			return ProxyStatusOK
		}
		return ProxyStatusWrongType
	case socks5AuthNoAccept:
		return ProxyStatusWrongType
	default:
		return ProxyStatusWrongType
	}
}

// Transport returns an http.Transport that dials every connection through the proxy.
func (p *Proxy) Transport() *http.Transport {
	transport := newTransport()
	if cd, ok := p.dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
		return transport
	}
	transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
		return p.dialer.Dial(network, addr)
	}
	return transport
}

// newTransport returns the transport settings shared by direct and proxied fetchers.
// Compression is negotiated by the fetcher itself so that br can be offered.
func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 nil,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
	}
}
