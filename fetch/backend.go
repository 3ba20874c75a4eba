// Package fetch retrieves renderable documents for the extraction pipeline,
// via either a lightweight HTTP path or a headless browser.
package fetch

import "context"

// Method names recorded on results so callers can see which path produced
// the content.
const (
	MethodSimpleHTTP = "simple_http"
	MethodBrowser    = "browser"
)

// Backend is the interface both fetch paths implement.
type Backend interface {
	// Name returns the backend identifier ("simple_http" or "browser").
	Name() string

	// Fetch retrieves the page for the given request.
	Fetch(ctx context.Context, req *Request) (*Document, error)
}

// Request contains everything a backend needs to fetch a page.
type Request struct {
	URL string

	// WaitTime is the additional render wait in seconds (browser only).
	WaitTime int

	// ExcludePatterns are forwarded to the browser DOM walker so it can
	// skip caller-excluded regions while collecting text.
	ExcludePatterns []string
}

// Document is the normalized output of a fetch.
type Document struct {
	// HTML is the raw (or rendered) page HTML.
	HTML string

	// Title is the extracted page title, "Untitled" when none was found.
	Title string

	// Text, when non-empty, is body text the backend already extracted
	// (the browser's composed-DOM walker). When empty the caller runs the
	// strategy chain over HTML instead.
	Text string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status of the final response, when known.
	StatusCode int

	// Method records which backend produced this document.
	Method string
}
