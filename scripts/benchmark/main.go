// Benchmark runs the capture pipeline against a fixed set of site types and
// reports timing, word counts and quality bands. Useful for spotting
// regressions in extraction behavior against live pages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/models"
	"github.com/datawoven/webharvest/scraper"
)

var (
	runs    = flag.Int("runs", 3, "number of runs per URL for averaging")
	method  = flag.String("method", "auto", "fetch method: auto, simple or browser")
	output  = flag.String("output", "benchmark-results.json", "JSON output file path")
	timeout = flag.Duration("timeout", 2*time.Minute, "per-scrape deadline")
)

// Test URLs covering common site types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Complex", "https://github.com/go-rod/rod"},
}

type urlResult struct {
	Label     string          `json:"label"`
	URL       string          `json:"url"`
	Runs      int             `json:"runs"`
	Successes int             `json:"successes"`
	AvgMs     int64           `json:"avg_ms"`
	WordCount int             `json:"word_count"`
	Quality   models.Quality  `json:"quality"`
	Method    string          `json:"method_used"`
	Errors    []string        `json:"errors,omitempty"`
}

func main() {
	flag.Parse()

	cfg := config.Load()
	o := scraper.New(cfg)
	defer o.Close()

	var results []urlResult

	for _, tu := range testURLs {
		fmt.Printf("benchmarking %s (%s)...\n", tu.Label, tu.URL)
		r := urlResult{Label: tu.Label, URL: tu.URL, Runs: *runs}

		var totalMs int64
		for i := 0; i < *runs; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			start := time.Now()
			res, err := o.Run(ctx, &models.ScrapeRequest{
				URL:    tu.URL,
				Method: models.Method(*method),
			}, nil)
			elapsed := time.Since(start)
			cancel()

			if err != nil {
				r.Errors = append(r.Errors, err.Error())
				continue
			}
			if !res.Success {
				r.Errors = append(r.Errors, res.Error)
				continue
			}
			r.Successes++
			totalMs += elapsed.Milliseconds()
			r.WordCount = res.WordCount
			r.Quality = res.Quality
			r.Method = res.MethodUsed
		}
		if r.Successes > 0 {
			r.AvgMs = totalMs / int64(r.Successes)
		}
		results = append(results, r)
	}

	printTable(results)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal results: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("results written to %s\n", *output)
}

func printTable(results []urlResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tOK\tAVG\tWORDS\tQUALITY\tMETHOD")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d/%d\t%dms\t%d\t%s\t%s\n",
			r.Label, r.Successes, r.Runs, r.AvgMs, r.WordCount, r.Quality, r.Method)
	}
	w.Flush()
}
