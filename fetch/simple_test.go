package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/models"
)

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		UserAgent:         "DataWoven/1.0 (Knowledge Capture Tool)",
		Timeout:           5 * time.Second,
		MaxAttempts:       2,
		DefaultRetryAfter: 60 * time.Second,
		MaxBodySize:       10 << 20,
	}
}

// newTestBackend returns a backend whose retry sleeps are recorded instead
// of performed.
func newTestBackend(cfg config.FetchConfig) (*SimpleBackend, *[]time.Duration) {
	b := NewSimpleBackend(cfg)
	var slept []time.Duration
	b.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return b, &slept
}

func TestSimpleFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>Hello Page</title></head><body><p>hi</p></body></html>`))
	}))
	defer srv.Close()

	b, _ := newTestBackend(testFetchConfig())
	doc, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Title != "Hello Page" {
		t.Errorf("title = %q, want %q", doc.Title, "Hello Page")
	}
	if doc.Method != MethodSimpleHTTP {
		t.Errorf("method = %q, want %q", doc.Method, MethodSimpleHTTP)
	}
	if doc.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", doc.StatusCode)
	}
	if gotUA != "DataWoven/1.0 (Knowledge Capture Tool)" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestSimpleFetchHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`<html><head><title>ok</title></head><body>fine now</body></html>`))
	}))
	defer srv.Close()

	b, slept := newTestBackend(testFetchConfig())
	doc, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Title != "ok" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(*slept) != 1 || (*slept)[0] != 7*time.Second {
		t.Errorf("slept = %v, want [7s]", *slept)
	}
}

func TestSimpleFetchRetryAfterDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, slept := newTestBackend(testFetchConfig())
	_, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for persistent 429")
	}
	if len(*slept) != 1 || (*slept)[0] != 60*time.Second {
		t.Errorf("slept = %v, want [60s] (default Retry-After)", *slept)
	}
}

func TestSimpleFetchBacksOffOn503(t *testing.T) {
	cfg := testFetchConfig()
	cfg.MaxAttempts = 3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b, slept := newTestBackend(cfg)
	_, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for persistent 503")
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %d times, want %d: %v", len(*slept), len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("backoff[%d] = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestSimpleFetchFailureIsScrapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b, _ := newTestBackend(testFetchConfig())
	_, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	var serr *models.ScrapeError
	if !errors.As(err, &serr) {
		t.Fatalf("error %T, want *models.ScrapeError", err)
	}
	if serr.Code != models.ErrCodeFetch {
		t.Errorf("code = %q, want %q", serr.Code, models.ErrCodeFetch)
	}
}

func TestSimpleFetchFollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>final</title></head><body>landed</body></html>`))
	}))
	defer final.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer srv.Close()

	b, _ := newTestBackend(testFetchConfig())
	doc, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.FinalURL != final.URL {
		t.Errorf("final URL = %q, want %q", doc.FinalURL, final.URL)
	}
}

func TestSimpleFetchTruncatesLargeBodies(t *testing.T) {
	cfg := testFetchConfig()
	cfg.MaxBodySize = 1024
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>"))
		for i := 0; i < 10_000; i++ {
			w.Write([]byte("padding "))
		}
		w.Write([]byte("</body></html>"))
	}))
	defer srv.Close()

	b, _ := newTestBackend(cfg)
	doc, err := b.Fetch(context.Background(), &Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if int64(len(doc.HTML)) > cfg.MaxBodySize {
		t.Errorf("body length %d exceeds cap %d", len(doc.HTML), cfg.MaxBodySize)
	}
}
