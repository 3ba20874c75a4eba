package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/models"
)

// SimpleBackend fetches pages over plain HTTP. It is the fast path for
// static pages that do not need JavaScript rendering.
type SimpleBackend struct {
	client *http.Client
	cfg    config.FetchConfig

	// sleep is an injection point for tests; defaults to a context-aware
	// time.Sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimpleBackend creates the HTTP backend.
func NewSimpleBackend(cfg config.FetchConfig) *SimpleBackend {
	return &SimpleBackend{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		cfg:   cfg,
		sleep: sleepCtx,
	}
}

func (b *SimpleBackend) Name() string { return MethodSimpleHTTP }

// Fetch issues a GET with the configured descriptive user agent, honoring
// 429 Retry-After and backing off on 503 and other HTTP errors, up to the
// configured attempt budget.
func (b *SimpleBackend) Fetch(ctx context.Context, req *Request) (*Document, error) {
	var lastErr error

	for attempt := 0; attempt < b.cfg.MaxAttempts; attempt++ {
		doc, retryIn, err := b.fetchOnce(ctx, req.URL, attempt)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if retryIn < 0 || attempt == b.cfg.MaxAttempts-1 {
			break
		}
		slog.Warn("simple fetch retrying", "url", req.URL,
			"attempt", attempt+1, "wait", retryIn, "error", err)
		if serr := b.sleep(ctx, retryIn); serr != nil {
			return nil, serr
		}
	}

	return nil, models.NewScrapeError(models.ErrCodeFetch,
		fmt.Sprintf("HTTP fetch failed after %d attempts", b.cfg.MaxAttempts), lastErr)
}

// fetchOnce performs a single GET. On a retryable failure it returns the
// delay to wait before the next attempt; retryIn < 0 means do not retry.
func (b *SimpleBackend) fetchOnce(ctx context.Context, url string, attempt int) (*Document, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", b.cfg.UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		// Network failure: one more try after a short backoff.
		return nil, 3 * time.Second, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := b.cfg.DefaultRetryAfter
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, perr := strconv.Atoi(v); perr == nil && secs >= 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, retryAfter, fmt.Errorf("rate limited (429) by %s", resp.Request.URL.Host)

	case resp.StatusCode == http.StatusServiceUnavailable:
		// Exponential backoff: 5s, 10s, ...
		return nil, (5 * time.Second) << attempt, fmt.Errorf("server unavailable (503)")

	case resp.StatusCode >= 400:
		// Other HTTP errors get one more chance after a short backoff.
		return nil, (3 * time.Second) << attempt, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, b.cfg.MaxBodySize))
	if err != nil {
		return nil, -1, fmt.Errorf("read body: %w", err)
	}

	html := string(body)
	return &Document{
		HTML:       html,
		Title:      ExtractTitle(html),
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Method:     MethodSimpleHTTP,
	}, 0, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
