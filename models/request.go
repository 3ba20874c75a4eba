package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Method selects which fetch backend handles a request.
type Method string

const (
	// MethodAuto tries the simple HTTP backend first and falls back to the
	// browser backend when the result fails or looks too thin.
	MethodAuto Method = "auto"

	// MethodSimple uses the plain HTTP backend exclusively.
	MethodSimple Method = "simple"

	// MethodBrowser uses the headless browser backend exclusively.
	MethodBrowser Method = "browser"
)

// ScrapeRequest describes one extraction attempt. It is immutable for the
// lifetime of the request; callers build a new value per attempt.
type ScrapeRequest struct {
	// URL is the page to scrape. Must be an absolute http(s) URL.
	URL string

	// Method selects the fetch backend ("auto", "simple", "browser").
	Method Method

	// ContentSelector is an optional CSS selector pointing at the main
	// content. When set it is tried before all other strategies.
	ContentSelector string

	// ExcludePatterns are matched case-insensitively against element class
	// and id attributes; matching elements are dropped before extraction.
	ExcludePatterns []string

	// WaitTime is the additional render wait in seconds (browser mode only).
	WaitTime int
}

// ParseExcludePatterns splits a comma-separated pattern string into a
// trimmed, empty-free slice, the form the enclosing application hands us.
func ParseExcludePatterns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}

// Validate checks the request configuration. It must be called before any
// network activity so that bad input fails fast and synchronously.
func (r *ScrapeRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return NewScrapeError(ErrCodeInvalidInput, "url is required", nil)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return NewScrapeError(ErrCodeInvalidInput, "invalid url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewScrapeError(ErrCodeInvalidInput,
			fmt.Sprintf("unsupported url scheme %q", u.Scheme), nil)
	}
	if u.Hostname() == "" {
		return NewScrapeError(ErrCodeInvalidInput, "url has no host", nil)
	}

	switch r.Method {
	case MethodAuto, MethodSimple, MethodBrowser:
	default:
		return NewScrapeError(ErrCodeInvalidInput,
			fmt.Sprintf("unknown method %q (want auto, simple or browser)", r.Method), nil)
	}

	if sel := strings.TrimSpace(r.ContentSelector); sel != "" {
		if _, err := cascadia.Parse(sel); err != nil {
			return NewScrapeError(ErrCodeInvalidInput,
				fmt.Sprintf("malformed content selector %q", sel), err)
		}
	}

	if r.WaitTime < 0 {
		return NewScrapeError(ErrCodeInvalidInput, "wait time must not be negative", nil)
	}
	return nil
}

// Domain returns the host portion of the request URL, the unit of rate-limit
// accounting. Validate must have succeeded first.
func (r *ScrapeRequest) Domain() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
