// Package limiter enforces per-domain request budgets and politeness delays
// for outbound scraping traffic.
package limiter

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/datawoven/webharvest/config"
)

// RateLimiter tracks request timestamps per domain and blocks callers until
// issuing a request would stay within the per-minute and per-hour ceilings.
// A randomized politeness delay is applied on every call regardless of limits.
//
// The limiter is an explicitly constructed instance, shared by reference
// between however many scrape workers exist. Access to a domain's timestamp
// list is serialized by a per-domain mutex, so two workers can never both
// observe spare capacity and both proceed over the limit. Requests to
// different domains do not contend.
type RateLimiter struct {
	perMinute int
	perHour   int
	minDelay  time.Duration
	maxDelay  time.Duration

	// global, when non-nil, caps total throughput across all domains.
	global *rate.Limiter

	// now, sleep and randFloat are injection points for tests.
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64

	mu      sync.Mutex
	domains map[string]*domainState
}

// domainState holds the mutable per-domain window. Its mutex is held for the
// whole wait-and-record sequence, including limiter-induced sleeps, which is
// what serializes the check-then-act against concurrent workers.
type domainState struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a RateLimiter from configuration.
func New(cfg config.LimiterConfig) *RateLimiter {
	l := &RateLimiter{
		perMinute: cfg.RequestsPerMinute,
		perHour:   cfg.RequestsPerHour,
		minDelay:  cfg.MinDelay,
		maxDelay:  cfg.MaxDelay,
		now:       time.Now,
		sleep:     sleepCtx,
		randFloat: rand.Float64,
		domains:   make(map[string]*domainState),
	}
	if cfg.GlobalRPS > 0 {
		l.global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), 1)
	}
	return l
}

// WaitIfNeeded blocks until a request to domain is permitted, then records
// the request timestamp. It only returns an error when ctx is cancelled;
// rate limits are always resolved by waiting, never by rejecting.
//
// Guarantees on return: at the moment this call was made, the trailing
// 60-second window held fewer than the per-minute ceiling and the trailing
// 3600-second window fewer than the per-hour ceiling for this domain, and
// the politeness delay has elapsed.
func (l *RateLimiter) WaitIfNeeded(ctx context.Context, domain string) error {
	state := l.stateFor(domain)

	state.mu.Lock()
	defer state.mu.Unlock()

	now := l.now()

	// Prune entries older than one hour.
	state.stamps = pruneOlderThan(state.stamps, now.Add(-time.Hour))

	// Hourly window.
	if len(state.stamps) >= l.perHour {
		oldest := state.stamps[0]
		wait := time.Hour - now.Sub(oldest)
		if wait > 0 {
			slog.Warn("hourly limit reached, waiting",
				"domain", domain, "wait", wait.Round(100*time.Millisecond))
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			now = l.now()
			state.stamps = pruneOlderThan(state.stamps, now.Add(-time.Hour))
		}
	}

	// Per-minute window.
	recent := pruneOlderThan(state.stamps, now.Add(-time.Minute))
	if len(recent) >= l.perMinute {
		oldest := recent[0]
		wait := time.Minute - now.Sub(oldest)
		if wait > 0 {
			slog.Info("per-minute limit reached, waiting",
				"domain", domain, "wait", wait.Round(100*time.Millisecond))
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			now = l.now()
			state.stamps = pruneOlderThan(state.stamps, now.Add(-time.Hour))
		}
	}

	// Process-wide throughput ceiling, if configured.
	if l.global != nil {
		if err := l.global.Wait(ctx); err != nil {
			return err
		}
		now = l.now()
	}

	// Politeness delay, always applied.
	delay := l.minDelay + time.Duration(l.randFloat()*float64(l.maxDelay-l.minDelay))
	slog.Debug("politeness delay", "domain", domain, "delay", delay.Round(100*time.Millisecond))
	if err := l.sleep(ctx, delay); err != nil {
		return err
	}

	state.stamps = append(state.stamps, l.now())
	return nil
}

// stateFor returns the per-domain state, creating it on first use. The
// registry lock is held only for the lookup, never across waits.
func (l *RateLimiter) stateFor(domain string) *domainState {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.domains[domain]
	if !ok {
		state = &domainState{}
		l.domains[domain] = state
	}
	return state
}

// pruneOlderThan returns the suffix of stamps at or after cutoff. Stamps are
// appended in non-decreasing order, so a single scan suffices.
func pruneOlderThan(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && stamps[i].Before(cutoff) {
		i++
	}
	return stamps[i:]
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
