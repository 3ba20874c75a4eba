package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// robotsTimeout keeps the pre-flight check cheap.
const robotsTimeout = 5 * time.Second

// RobotsAllowed performs a best-effort robots.txt check for the target URL.
// Only a blanket "Disallow: /" is treated as a denial; a missing or
// unreachable robots.txt assumes scraping is allowed.
func RobotsAllowed(ctx context.Context, client *http.Client, pageURL, userAgent string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	ctx, cancel := context.WithTimeout(ctx, robotsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return true
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return true
	}

	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) == "Disallow: /" {
			return false
		}
	}
	return true
}

// Client exposes the backend's HTTP client for the robots pre-flight.
func (b *SimpleBackend) Client() *http.Client { return b.client }
