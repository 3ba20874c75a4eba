package fetch

import (
	"testing"
	"time"

	"github.com/datawoven/webharvest/config"
)

func TestLifecycleBudgetCoversCallerWait(t *testing.T) {
	cfg := config.BrowserConfig{
		NavTimeout:  45 * time.Second,
		ContentWait: 10 * time.Second,
	}
	b := NewBrowserBackend(cfg, config.FetchConfig{}, config.ExtractConfig{})

	// A long caller wait must not be able to exhaust the overall deadline:
	// the budget has to leave the full nav timeout plus the wait itself.
	for _, wait := range []int{0, 35, 60, 300} {
		budget := b.lifecycleBudget(wait)
		floor := cfg.NavTimeout + time.Duration(wait)*time.Second
		if budget <= floor {
			t.Errorf("budget(%d) = %v, must exceed nav timeout + wait (%v)", wait, budget, floor)
		}
	}

	// The budget grows one second per second of requested wait.
	if diff := b.lifecycleBudget(60) - b.lifecycleBudget(0); diff != 60*time.Second {
		t.Errorf("budget grew by %v for a 60s wait, want 60s", diff)
	}
}
