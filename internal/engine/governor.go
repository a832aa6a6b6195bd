package engine

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Backoff bounds applied when the remote side signals rate limiting.
const (
	backoffMin = 30 * time.Second
	backoffMax = 60 * time.Second
)

// Governor enforces per-minute and per-day call budgets for the metered
// API. Once the daily budget is spent (or the remote reports quota
// exhaustion) the breaker latches and every further Admit returns false
// without waiting, until Reset.
type Governor struct {
	dailyLimit     int
	perMinuteLimit int
	burst          *rate.Limiter // inter-call burst protection

	now   func() time.Time
	sleep func(time.Duration)

	mu          sync.Mutex
	dayStart    time.Time
	dayCount    int
	minuteStart time.Time
	minuteCount int
	tripped     bool
}

// NewGovernor builds a governor with the given budgets. burstDelay is
// the minimum spacing between admitted calls.
func NewGovernor(dailyLimit, perMinuteLimit int, burstDelay time.Duration) *Governor {
	g := &Governor{
		dailyLimit:     dailyLimit,
		perMinuteLimit: perMinuteLimit,
		now:            time.Now,
		sleep:          time.Sleep,
	}
	if burstDelay > 0 {
		g.burst = rate.NewLimiter(rate.Every(burstDelay), 1)
	}
	return g
}

// Admit reports whether the caller may make one remote call, blocking
// first if the per-minute budget is spent. false means the breaker is
// tripped or the daily budget is exhausted; the caller must not call.
func (g *Governor) Admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tripped {
		return false
	}

	now := g.now()
	if g.dayStart.IsZero() {
		g.dayStart = now
	}
	if now.Sub(g.dayStart) > 24*time.Hour {
		g.dayCount = 0
		g.dayStart = now
		slog.Info("governor: daily quota counter reset")
	}
	if g.dayCount >= g.dailyLimit {
		g.tripped = true
		slog.Warn("governor: daily quota limit reached", slog.Int("limit", g.dailyLimit))
		return false
	}

	if g.minuteStart.IsZero() {
		g.minuteStart = now
	}
	if now.Sub(g.minuteStart) > time.Minute {
		g.minuteCount = 0
		g.minuteStart = now
	}
	if g.minuteCount >= g.perMinuteLimit {
		wait := time.Minute - now.Sub(g.minuteStart)
		if wait > 0 {
			slog.Info("governor: per-minute limit reached, waiting", slog.Duration("wait", wait))
			g.sleep(wait)
		}
		g.minuteCount = 0
		g.minuteStart = g.now()
	}

	if g.burst != nil {
		if d := g.burst.Reserve().Delay(); d > 0 {
			g.sleep(d)
		}
	}

	g.minuteCount++
	g.dayCount++
	return true
}

// Backoff sleeps a randomized interval within the configured bounds.
// Called after the remote signals rate limiting, before the single retry.
func (g *Governor) Backoff() {
	wait := backoffMin + rand.N(backoffMax-backoffMin)
	slog.Warn("governor: rate limited, backing off", slog.Duration("wait", wait))
	g.sleep(wait)
}

// Trip latches the breaker. Used when the remote reports quota exhaustion.
func (g *Governor) Trip() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.tripped {
		slog.Warn("governor: breaker tripped, no further remote calls this run")
	}
	g.tripped = true
}

// Tripped reports whether the breaker is latched.
func (g *Governor) Tripped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripped
}

// Reset clears the breaker and all counters.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tripped = false
	g.dayCount = 0
	g.minuteCount = 0
	g.dayStart = time.Time{}
	g.minuteStart = time.Time{}
}

// CallsMade returns the number of calls admitted in the current day window.
func (g *Governor) CallsMade() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dayCount
}

// DailyLimit returns the configured daily budget.
func (g *Governor) DailyLimit() int { return g.dailyLimit }
