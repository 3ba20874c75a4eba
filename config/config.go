package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all pipeline configuration.
type Config struct {
	Limiter LimiterConfig
	Fetch   FetchConfig
	Browser BrowserConfig
	Extract ExtractConfig
	Cache   CacheConfig
	Log     LogConfig
}

// LimiterConfig controls per-domain rate limiting.
type LimiterConfig struct {
	// RequestsPerMinute is the ceiling for any trailing 60-second window.
	RequestsPerMinute int // default: 10

	// RequestsPerHour is the ceiling for any trailing 3600-second window.
	RequestsPerHour int // default: 100

	// MinDelay and MaxDelay bound the randomized politeness delay applied
	// before every outbound request.
	MinDelay time.Duration // default: 2s
	MaxDelay time.Duration // default: 5s

	// GlobalRPS caps total outbound throughput across all domains.
	// Zero disables the global ceiling.
	GlobalRPS float64 // default: 0
}

// FetchConfig controls the simple HTTP backend.
type FetchConfig struct {
	// UserAgent identifies this tool to target servers.
	UserAgent string // default: "DataWoven/1.0 (Knowledge Capture Tool)"

	// Timeout is the per-request HTTP deadline.
	Timeout time.Duration // default: 30s

	// MaxAttempts bounds retries on 429/503/other HTTP errors.
	MaxAttempts int // default: 2

	// DefaultRetryAfter is used when a 429 response has no Retry-After header.
	DefaultRetryAfter time.Duration // default: 60s

	// MaxBodySize caps the response body read.
	MaxBodySize int64 // default: 10 MB

	// CheckRobots enables the best-effort robots.txt pre-flight check.
	CheckRobots bool // default: true
}

// BrowserConfig controls the headless browser backend.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavTimeout is the page navigation deadline.
	NavTimeout time.Duration // default: 45s

	// ContentWait is how long to wait for a visible content selector
	// after navigation before proceeding anyway.
	ContentWait time.Duration // default: 10s

	// BlockedResourceTypes lists resource types the hijack router blocks.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// ExtractConfig controls the strategy chain acceptance thresholds and the
// auto-mode fallback cutoff. The exact numbers are empirically tuned, not
// load-bearing architecture; only their relative ordering matters.
type ExtractConfig struct {
	SelectorMinWords    int     // default: 50
	ReadabilityMinWords int     // default: 120
	SemanticMinWords    int     // default: 50
	FallbackMinWords    int     // default: 100 (auto mode: below this, escalate to browser)
	WalkerMinWords      int     // default: 40 (browser DOM walker acceptance)
	FuzzySimilarity     float64 // default: 0.92 (paragraph dedupe threshold)
}

// CacheConfig controls the in-memory result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results. Zero disables.
	MaxEntries int // default: 256

	// TTL is how long a cached result stays valid.
	TTL time.Duration // default: 15m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Limiter: LimiterConfig{
			RequestsPerMinute: envIntOr("HARVEST_RPM", 10),
			RequestsPerHour:   envIntOr("HARVEST_RPH", 100),
			MinDelay:          envDurationOr("HARVEST_MIN_DELAY", 2*time.Second),
			MaxDelay:          envDurationOr("HARVEST_MAX_DELAY", 5*time.Second),
			GlobalRPS:         envFloatOr("HARVEST_GLOBAL_RPS", 0),
		},
		Fetch: FetchConfig{
			UserAgent:         envOr("HARVEST_USER_AGENT", "DataWoven/1.0 (Knowledge Capture Tool)"),
			Timeout:           envDurationOr("HARVEST_HTTP_TIMEOUT", 30*time.Second),
			MaxAttempts:       envIntOr("HARVEST_MAX_ATTEMPTS", 2),
			DefaultRetryAfter: envDurationOr("HARVEST_RETRY_AFTER", 60*time.Second),
			MaxBodySize:       int64(envIntOr("HARVEST_MAX_BODY", 10<<20)),
			CheckRobots:       envBoolOr("HARVEST_CHECK_ROBOTS", true),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("HARVEST_HEADLESS", true),
			NoSandbox:   envBoolOr("HARVEST_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("HARVEST_BROWSER_BIN"),
			NavTimeout:  envDurationOr("HARVEST_NAV_TIMEOUT", 45*time.Second),
			ContentWait: envDurationOr("HARVEST_CONTENT_WAIT", 10*time.Second),
			BlockedResourceTypes: envSliceOr("HARVEST_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Extract: ExtractConfig{
			SelectorMinWords:    envIntOr("HARVEST_SELECTOR_MIN_WORDS", 50),
			ReadabilityMinWords: envIntOr("HARVEST_READABILITY_MIN_WORDS", 120),
			SemanticMinWords:    envIntOr("HARVEST_SEMANTIC_MIN_WORDS", 50),
			FallbackMinWords:    envIntOr("HARVEST_FALLBACK_MIN_WORDS", 100),
			WalkerMinWords:      envIntOr("HARVEST_WALKER_MIN_WORDS", 40),
			FuzzySimilarity:     envFloatOr("HARVEST_FUZZY_SIMILARITY", 0.92),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("HARVEST_CACHE_ENTRIES", 256),
			TTL:        envDurationOr("HARVEST_CACHE_TTL", 15*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("HARVEST_LOG_LEVEL", "info"),
			Format: envOr("HARVEST_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
