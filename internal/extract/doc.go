// Package extract turns fetched HTML into plain text and a list of links.
//
// Text extraction drops scripts, styles and page chrome (header, footer, nav)
// and keeps every remaining text node. The result is normalized to one
// trimmed chunk per line. Links come from every anchor in the document,
// including those inside the dropped chrome, and are resolved to absolute URLs.
package extract
