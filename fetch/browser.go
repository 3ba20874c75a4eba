package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/extract"
	"github.com/datawoven/webharvest/models"
)

// contentSelector is what the backend waits for after navigation before it
// starts extracting: any common content container or a plain paragraph.
const contentSelector = `article, main, [role="main"], .content, p`

// browserGuidance is appended to browser failures so the end user gets
// actionable next steps rather than a bare error.
const browserGuidance = "Try increasing the wait time, using simple mode if the site blocks automation, or checking whether the site requires login."

// BrowserBackend renders pages in a headless browser for
// JavaScript-dependent sites. The browser process is launched lazily on
// first use and shared across requests.
type BrowserBackend struct {
	cfg       config.BrowserConfig
	userAgent string
	walkerMin int
	fuzzySim  float64

	launchOnce sync.Once
	launchErr  error
	browser    *rod.Browser
}

// NewBrowserBackend creates the browser backend without launching anything;
// a missing Chromium is only reported when a browser fetch is attempted.
func NewBrowserBackend(cfg config.BrowserConfig, fetchCfg config.FetchConfig, extractCfg config.ExtractConfig) *BrowserBackend {
	return &BrowserBackend{
		cfg:       cfg,
		userAgent: fetchCfg.UserAgent,
		walkerMin: extractCfg.WalkerMinWords,
		fuzzySim:  extractCfg.FuzzySimilarity,
	}
}

func (b *BrowserBackend) Name() string { return MethodBrowser }

// launch starts the shared headless browser on first use.
func (b *BrowserBackend) launch() error {
	b.launchOnce.Do(func() {
		l := launcher.New().
			Headless(b.cfg.Headless).
			NoSandbox(b.cfg.NoSandbox)
		if b.cfg.BrowserBin != "" {
			l = l.Bin(b.cfg.BrowserBin)
		}
		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))

		controlURL, err := l.Launch()
		if err != nil {
			b.launchErr = models.NewScrapeError(models.ErrCodeBrowser,
				"failed to launch browser; ensure Chromium is installed. "+browserGuidance, err)
			return
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			b.launchErr = models.NewScrapeError(models.ErrCodeBrowser,
				"failed to connect to browser. "+browserGuidance, err)
			return
		}
		slog.Info("browser launched", "controlURL", controlURL)
		b.browser = browser
	})
	return b.launchErr
}

// Close kills the browser process if one was launched.
func (b *BrowserBackend) Close() {
	if b.browser != nil {
		b.browser.MustClose()
	}
}

// Fetch renders the page and extracts text.
//
// Lifecycle:
//  1. lazy browser launch
//  2. new page + stealth injection (before navigation, or it has no effect)
//  3. hijack router blocking heavy resources (before navigation)
//  4. navigate with DOM-stable wait, under a deadline of its own
//  5. wait for a visible content selector, bounded
//  6. caller-specified extra wait
//  7. scroll passes (mid, bottom, top) to trigger lazy-loaded content
//  8. composed-DOM walker; on thin output fall back to rendered HTML
//
// The nav timeout covers only step 4; the caller's render wait and the
// scroll passes get their own room inside the overall lifecycle budget.
func (b *BrowserBackend) Fetch(ctx context.Context, req *Request) (*Document, error) {
	if err := b.launch(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.lifecycleBudget(req.WaitTime))
	defer cancel()

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowser,
			"failed to open browser page. "+browserGuidance, err)
	}
	defer func() { _ = page.Close() }()

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without", "error", err)
	}

	_ = proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}.Call(page)
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: proto.NetworkHeaders{
		"Accept-Language": gson.New("en-US,en;q=0.9"),
	}}.Call(page)

	router := setupHijack(page, b.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	navCtx, navCancel := context.WithTimeout(ctx, b.cfg.NavTimeout)
	nav := page.Context(navCtx)
	if err := nav.Navigate(req.URL); err != nil {
		navCancel()
		return nil, b.navError(err)
	}
	if err := nav.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilize, proceeding with current state", "error", err)
	}
	navCancel()

	p := page.Context(ctx)

	b.waitForContent(p)

	if req.WaitTime > 0 {
		if err := sleepCtx(ctx, time.Duration(req.WaitTime)*time.Second); err != nil {
			return nil, b.navError(err)
		}
	}

	b.scrollPasses(ctx, p)

	html, err := p.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowser,
			"failed to read rendered page. "+browserGuidance, err)
	}

	title := evalString(p, `() => document.title`)
	if title == "" {
		title = ExtractTitle(html)
	}
	finalURL := evalString(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	doc := &Document{
		HTML:     html,
		Title:    title,
		FinalURL: finalURL,
		Method:   MethodBrowser,
	}

	// Composed-DOM walker. When it yields enough text, that text wins;
	// otherwise Text stays empty and the strategy chain (including the
	// readability pass) runs over the rendered HTML.
	if text := b.walkComposedDOM(p, req.ExcludePatterns); len(strings.Fields(text)) > b.walkerMin {
		text = extract.DedupeExact(text, 20)
		text = extract.DedupeFuzzy(text, 40, b.fuzzySim)
		doc.Text = text
	}

	return doc, nil
}

// lifecycleBudget bounds the whole browser fetch so a wedged page cannot
// hang the caller: navigation, the content-selector wait, the caller's
// render wait, plus slack for the scroll passes and extraction.
func (b *BrowserBackend) lifecycleBudget(waitTime int) time.Duration {
	return b.cfg.NavTimeout + b.cfg.ContentWait +
		time.Duration(waitTime)*time.Second + 10*time.Second
}

// waitForContent waits, bounded, for a visible content-bearing element.
// Absence is not an error; some pages simply render late or oddly.
func (b *BrowserBackend) waitForContent(p *rod.Page) {
	err := rod.Try(func() {
		p.Timeout(b.cfg.ContentWait).MustElement(contentSelector).MustWaitVisible()
	})
	if err != nil {
		slog.Debug("no content selector became visible, continuing", "error", err)
	}
}

// scrollPasses scrolls mid-page, to the bottom, and back to the top with
// short pauses, so lazy-loaded content gets a chance to appear.
func (b *BrowserBackend) scrollPasses(ctx context.Context, p *rod.Page) {
	for _, js := range []string{
		`() => window.scrollTo(0, document.body.scrollHeight / 2)`,
		`() => window.scrollTo(0, document.body.scrollHeight)`,
		`() => window.scrollTo(0, 0)`,
	} {
		if _, err := p.Eval(js); err != nil {
			return
		}
		if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
			return
		}
	}
}

// walkComposedDOM runs the in-page collector that pierces shadow roots and
// gathers heading/paragraph/list-item text while skipping hidden and
// boilerplate nodes. Returns "" on any evaluation failure.
func (b *BrowserBackend) walkComposedDOM(p *rod.Page, excludes []string) string {
	if excludes == nil {
		excludes = []string{}
	}
	res, err := p.Eval(jsCollectText, excludes)
	if err != nil {
		slog.Debug("composed-DOM walker failed", "error", err)
		return ""
	}
	return strings.TrimSpace(res.Value.Str())
}

func (b *BrowserBackend) navError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout,
			"page load timed out. "+browserGuidance, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeBrowser,
			fmt.Sprintf("navigation failed. %s", browserGuidance), err)
	}
}

// evalString evaluates a JS expression and returns the string result,
// swallowing errors (used for optional metadata only).
func evalString(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(res.Value.Str())
}

// jsCollectText walks the composed DOM (light and shadow trees), collecting
// text from paragraph-like elements under main/article roots, skipping
// hidden, navigational and boilerplate-classed nodes. Responsive layouts
// often duplicate content between mobile and desktop variants; the caller
// dedupes the output.
const jsCollectText = `(excludes) => {
	const visited = new WeakSet();
	const excl = (excludes || []).map(s => s.toLowerCase());

	function visible(el) {
		const st = getComputedStyle(el);
		if (!st || st.display === "none" || st.visibility === "hidden" || st.opacity === "0") return false;
		const r = el.getBoundingClientRect();
		if ((r.width === 0 || r.height === 0) && !el.shadowRoot) return false;
		return true;
	}

	function shouldSkip(el) {
		if (el.closest('nav,aside,header,footer,[role="navigation"],[aria-hidden="true"],[hidden]')) return true;
		const cl = (el.className || "").toString().toLowerCase();
		if (cl.includes("toc") || cl.includes("table-of-contents") || cl.includes("breadcrumbs") ||
			cl.includes("social") || cl.includes("newsletter") || cl.includes("cookie")) return true;
		if (cl.includes("card") || cl.includes("tile") || cl.includes("promo")) return true;
		const id = (el.id || "").toLowerCase();
		return excl.some(p => cl.includes(p) || id.includes(p));
	}

	function isParagraphish(el) {
		const tag = (el.tagName || "").toLowerCase();
		return /^h[1-6]$/.test(tag) || ["p", "li", "blockquote"].includes(tag);
	}

	function dive(el, acc) {
		if (!el || visited.has(el)) return;
		visited.add(el);
		if (!visible(el) || shouldSkip(el)) return;

		if (isParagraphish(el)) {
			const t = (el.innerText || "").trim();
			if (t) acc.push(t);
		}

		if (el.shadowRoot) Array.from(el.shadowRoot.children).forEach(c => dive(c, acc));
		Array.from(el.children).forEach(c => dive(c, acc));
	}

	const roots = document.querySelectorAll("main, article, [role='main']");
	const acc = [];
	if (roots.length) Array.from(roots).forEach(r => dive(r, acc));
	else dive(document.body, acc);

	return acc.join("\n\n");
}`
