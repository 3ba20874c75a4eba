// Package scraper coordinates the full capture pipeline: rate limiting,
// fetching, extraction and quality labeling.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/datawoven/webharvest/cache"
	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/extract"
	"github.com/datawoven/webharvest/fetch"
	"github.com/datawoven/webharvest/limiter"
	"github.com/datawoven/webharvest/models"
)

// fallbackPause is the breather between the failed simple attempt and the
// browser attempt in auto mode.
const fallbackPause = time.Second

// memoryTTL is how long a domain's working fetch method is remembered.
const memoryTTL = 24 * time.Hour

// ProgressFunc receives human-readable phase updates during a scrape.
// Callbacks stop as soon as the request context is canceled.
type ProgressFunc func(message string)

// Orchestrator runs scrape requests through the pipeline. One orchestrator
// serves many concurrent requests; per-request state lives on the stack.
type Orchestrator struct {
	cfg     *config.Config
	limiter *limiter.RateLimiter
	simple  fetch.Backend
	browser fetch.Backend
	chain   *extract.Chain
	results *cache.Cache
	memory  *DomainMemory

	// pause is an injection point for tests; defaults to a context-aware
	// sleep.
	pause func(ctx context.Context, d time.Duration) error

	// robotsAllowed is an injection point for tests; defaults to the
	// best-effort robots.txt pre-flight.
	robotsAllowed func(ctx context.Context, url string) bool
}

// New wires the pipeline from configuration.
func New(cfg *config.Config) *Orchestrator {
	simple := fetch.NewSimpleBackend(cfg.Fetch)
	o := &Orchestrator{
		cfg:     cfg,
		limiter: limiter.New(cfg.Limiter),
		simple:  simple,
		browser: fetch.NewBrowserBackend(cfg.Browser, cfg.Fetch, cfg.Extract),
		chain:   extract.NewChain(cfg.Extract),
		results: cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL),
		memory:  NewDomainMemory(memoryTTL),
		pause:   sleepCtx,
	}
	o.robotsAllowed = func(ctx context.Context, url string) bool {
		if !cfg.Fetch.CheckRobots {
			return true
		}
		return fetch.RobotsAllowed(ctx, simple.Client(), url, cfg.Fetch.UserAgent)
	}
	return o
}

// Close releases backend resources, including the headless browser process
// if one was launched.
func (o *Orchestrator) Close() {
	if b, ok := o.browser.(*fetch.BrowserBackend); ok {
		b.Close()
	}
}

// Run executes one scrape request synchronously. Scrape failures are
// reported inside the result with Success=false; the error return is
// reserved for invalid requests, which fail before any network activity.
func (o *Orchestrator) Run(ctx context.Context, req *models.ScrapeRequest, progress ProgressFunc) (*models.ScrapeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	notify := o.notifier(ctx, progress)

	// Get hands back an independent copy, so annotating it here cannot
	// touch the stored result or race with other hits.
	if res, ok := o.results.Get(cache.Key(req)); ok {
		slog.Debug("cache hit", "url", req.URL)
		if res.Metadata == nil {
			res.Metadata = map[string]string{}
		}
		res.Metadata["cache_hit"] = "true"
		return res, nil
	}

	domain := req.Domain()
	notify(fmt.Sprintf("Checking rate limits for %s...", domain))
	if err := ctx.Err(); err != nil {
		return o.failure(req, "", err), nil
	}

	if !o.robotsAllowed(ctx, req.URL) {
		return models.NewFailureResult(req.URL, "",
			"robots.txt disallows scraping this site"), nil
	}

	if err := o.limiter.WaitIfNeeded(ctx, domain); err != nil {
		return o.failure(req, "", err), nil
	}
	if err := ctx.Err(); err != nil {
		return o.failure(req, "", err), nil
	}

	res := o.fetchAndExtract(ctx, req, notify)
	if res.Success && o.results != nil {
		o.results.Set(cache.Key(req), res)
	}
	return res, nil
}

// Go runs the request on a fresh goroutine and delivers the result on the
// returned channel. Exactly one result is sent, then the channel is closed.
func (o *Orchestrator) Go(ctx context.Context, req *models.ScrapeRequest, progress ProgressFunc) <-chan *models.ScrapeResult {
	out := make(chan *models.ScrapeResult, 1)
	go func() {
		defer close(out)
		res, err := o.Run(ctx, req, progress)
		if err != nil {
			res = models.NewFailureResult(req.URL, "", err.Error())
		}
		out <- res
	}()
	return out
}

// fetchAndExtract handles backend selection, including the auto-mode
// escalation from simple HTTP to the browser.
func (o *Orchestrator) fetchAndExtract(ctx context.Context, req *models.ScrapeRequest, notify ProgressFunc) *models.ScrapeResult {
	switch req.Method {
	case models.MethodSimple:
		return o.attempt(ctx, req, o.simple, notify)
	case models.MethodBrowser:
		return o.attempt(ctx, req, o.browser, notify)
	}

	// Auto: the cheap path first, then escalate when the result failed or
	// came back too thin to be the page's real content. Domains already
	// known to need rendering skip the simple attempt.
	domain := req.Domain()
	if o.memory.Get(domain) == fetch.MethodBrowser {
		slog.Debug("domain known to need rendering, skipping simple attempt", "domain", domain)
		res := o.attempt(ctx, req, o.browser, notify)
		if res.Success {
			return res
		}
		// The memory may be stale; fall through to the normal path.
	}

	res := o.attempt(ctx, req, o.simple, notify)
	if res.Success && res.WordCount >= o.cfg.Extract.FallbackMinWords {
		o.memory.Record(domain, fetch.MethodSimpleHTTP)
		return res
	}
	if ctx.Err() != nil {
		return res
	}

	slog.Info("escalating to browser",
		"url", req.URL, "simpleSuccess", res.Success, "words", res.WordCount)
	notify("Content looks thin, retrying with browser...")
	if err := o.pause(ctx, fallbackPause); err != nil {
		return res
	}

	browserRes := o.attempt(ctx, req, o.browser, notify)
	if !browserRes.Success && res.Success {
		// The thin simple result still beats a browser failure.
		return res
	}
	if browserRes.Success {
		o.memory.Record(domain, fetch.MethodBrowser)
	}
	if browserRes.Metadata == nil {
		browserRes.Metadata = map[string]string{}
	}
	browserRes.Metadata["fallback"] = "true"
	return browserRes
}

// attempt runs one backend and the extraction chain over its output.
func (o *Orchestrator) attempt(ctx context.Context, req *models.ScrapeRequest, backend fetch.Backend, notify ProgressFunc) *models.ScrapeResult {
	notify("Fetching page...")

	doc, err := backend.Fetch(ctx, &fetch.Request{
		URL:             req.URL,
		WaitTime:        req.WaitTime,
		ExcludePatterns: req.ExcludePatterns,
	})
	if err != nil {
		return o.failure(req, backend.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return o.failure(req, backend.Name(), err)
	}

	notify("Extracting content...")

	content := doc.Text
	strategy := "dom_walker"
	if content == "" {
		var cerr error
		content, strategy, cerr = o.chain.Extract(doc.HTML, req)
		if cerr != nil {
			return o.failure(req, backend.Name(), cerr)
		}
	}

	meta := map[string]string{
		"strategy":  strategy,
		"final_url": doc.FinalURL,
	}
	if doc.StatusCode != 0 {
		meta["status_code"] = strconv.Itoa(doc.StatusCode)
	}

	res := models.NewSuccessResult(req.URL, doc.Title, content, backend.Name(), meta)
	slog.Info("scrape complete", "url", req.URL, "method", backend.Name(),
		"strategy", strategy, "words", res.WordCount, "quality", res.Quality)
	return res
}

// failure converts a pipeline error into a failed result, preserving the
// error code for callers that inspect Metadata.
func (o *Orchestrator) failure(req *models.ScrapeRequest, method string, err error) *models.ScrapeResult {
	res := models.NewFailureResult(req.URL, method, err.Error())
	var serr *models.ScrapeError
	if errors.As(err, &serr) {
		res.Metadata = map[string]string{"error_code": serr.Code}
	}
	slog.Warn("scrape failed", "url", req.URL, "method", method, "error", err)
	return res
}

// notifier wraps the progress callback so it never fires after cancellation
// and nil callbacks cost nothing.
func (o *Orchestrator) notifier(ctx context.Context, progress ProgressFunc) ProgressFunc {
	if progress == nil {
		return func(string) {}
	}
	return func(msg string) {
		if ctx.Err() != nil {
			return
		}
		progress(msg)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
