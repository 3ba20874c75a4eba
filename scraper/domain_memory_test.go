package scraper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/datawoven/webharvest/fetch"
	"github.com/datawoven/webharvest/models"
)

func TestDomainMemoryRoundTrip(t *testing.T) {
	dm := NewDomainMemory(time.Minute)
	if got := dm.Get("example.com"); got != "" {
		t.Errorf("unknown domain = %q, want empty", got)
	}
	dm.Record("example.com", fetch.MethodBrowser)
	if got := dm.Get("example.com"); got != fetch.MethodBrowser {
		t.Errorf("remembered method = %q, want browser", got)
	}
	if got := dm.Get("other.com"); got != "" {
		t.Errorf("other domain = %q, want empty", got)
	}
}

func TestDomainMemoryExpiry(t *testing.T) {
	dm := NewDomainMemory(-time.Second)
	dm.Record("example.com", fetch.MethodBrowser)
	if got := dm.Get("example.com"); got != "" {
		t.Errorf("expired entry = %q, want empty", got)
	}
}

func TestDomainMemoryNilSafe(t *testing.T) {
	var dm *DomainMemory
	dm.Record("example.com", fetch.MethodBrowser)
	if got := dm.Get("example.com"); got != "" {
		t.Errorf("nil memory = %q, want empty", got)
	}
}

func TestAutoSkipsSimpleForRememberedDomain(t *testing.T) {
	simple := &fakeBackend{name: fetch.MethodSimpleHTTP}
	rendered := &fakeBackend{
		name: fetch.MethodBrowser,
		docs: []*fetch.Document{{
			HTML:   articleHTML("App", 400),
			Title:  "App",
			Text:   strings.Repeat("Rendered body text with plenty of substance in every paragraph here. ", 40),
			Method: fetch.MethodBrowser,
		}},
	}
	o := newTestOrchestrator(testConfig(), simple, rendered)
	o.memory = NewDomainMemory(time.Minute)
	o.memory.Record("example.com", fetch.MethodBrowser)

	res, err := o.Run(context.Background(), &models.ScrapeRequest{
		URL:    "https://example.com/app",
		Method: models.MethodAuto,
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if simple.calls != 0 {
		t.Errorf("simple backend called %d times for a domain known to need rendering", simple.calls)
	}
	if res.MethodUsed != "browser" {
		t.Errorf("method_used = %q, want browser", res.MethodUsed)
	}
}
