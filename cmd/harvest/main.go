// Command harvest scrapes a single page and prints the extraction result
// as JSON on stdout. Progress messages go to stderr so the output stays
// pipeable.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/models"
	"github.com/datawoven/webharvest/scraper"
)

func main() {
	var (
		method   = flag.String("method", "auto", "fetch method: auto, simple or browser")
		selector = flag.String("selector", "", "CSS selector for the main content")
		exclude  = flag.String("exclude", "", "comma-separated class/id patterns to exclude")
		wait     = flag.Int("wait", 0, "extra render wait in seconds (browser mode)")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall deadline for the scrape")
		quiet    = flag.Bool("quiet", false, "suppress progress messages")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	initLogger(cfg.Log)

	req := &models.ScrapeRequest{
		URL:             flag.Arg(0),
		Method:          models.Method(*method),
		ContentSelector: *selector,
		ExcludePatterns: models.ParseExcludePatterns(*exclude),
		WaitTime:        *wait,
	}

	o := scraper.New(cfg)
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var progress scraper.ProgressFunc
	if !*quiet {
		progress = func(msg string) { fmt.Fprintln(os.Stderr, msg) }
	}

	res, err := o.Run(ctx, req, progress)
	if err != nil {
		slog.Error("invalid request", "error", err)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		slog.Error("failed to encode result", "error", err)
		os.Exit(1)
	}

	if !res.Success {
		os.Exit(1)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}

	slog.SetDefault(slog.New(handler))
}
