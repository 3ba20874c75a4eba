package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func robotsServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRobotsBlanketDisallow(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /\n", http.StatusOK)
	if RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/page", "test-agent") {
		t.Error("blanket Disallow should deny scraping")
	}
}

func TestRobotsPartialDisallowAllowed(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /admin\nDisallow: /private/\n", http.StatusOK)
	if !RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/page", "test-agent") {
		t.Error("path-specific Disallow lines should not deny")
	}
}

func TestRobotsMissingFileAllowed(t *testing.T) {
	srv := robotsServer(t, "not found", http.StatusNotFound)
	if !RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/page", "test-agent") {
		t.Error("missing robots.txt should assume allowed")
	}
}

func TestRobotsUnreachableHostAllowed(t *testing.T) {
	if !RobotsAllowed(context.Background(), http.DefaultClient, "http://127.0.0.1:1/page", "test-agent") {
		t.Error("unreachable robots.txt should assume allowed")
	}
}
