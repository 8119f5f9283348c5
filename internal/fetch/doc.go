// Package fetch downloads single web pages for the crawler.
//
// HTTPFetcher sends one GET request per call with a browser-like User-Agent.
// It negotiates gzip, deflate and brotli compression, caps the body size and
// converts legacy charsets to UTF-8. Every failure is reported as a *Error
// whose Kind is one of KindTimeout, KindHTTP or KindNetwork, so the crawler
// can log and skip the page without inspecting error strings.
//
// Requests may optionally be routed through a SOCKS5 proxy (see Proxy).
package fetch
