// Package ratelimit implements the per-process rate limiter and daily cost
// tracker shared by every LLM-calling component.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter maintains a sliding one-minute window of call timestamps and a
// running daily cost total, reset at local midnight. All operations are
// non-blocking: callers check, then decide whether to proceed.
type Limiter struct {
	mu               sync.Mutex
	maxCallsPerMin   int
	maxDailyCostUSD  float64
	timestamps       []time.Time
	dailyCost        float64
	dailyCostResetAt time.Time
	now              func() time.Time
}

// New creates a Limiter enforcing maxCallsPerMin requests per rolling
// minute and maxDailyCostUSD of estimated+actual cost per local day.
func New(maxCallsPerMin int, maxDailyCostUSD float64) *Limiter {
	l := &Limiter{
		maxCallsPerMin:  maxCallsPerMin,
		maxDailyCostUSD: maxDailyCostUSD,
		now:             time.Now,
	}
	l.dailyCostResetAt = nextMidnight(l.now())
	return l
}

// CheckRateLimit reports whether a new call may proceed under the rolling
// one-minute window, pruning expired timestamps first. It does not record
// the call — callers call RecordCall after a successful dispatch.
func (l *Limiter) CheckRateLimit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneTimestamps(l.now())
	ok := len(l.timestamps) < l.maxCallsPerMin
	if !ok {
		callsRejectedTotal.WithLabelValues("rate").Inc()
	}
	return ok
}

// CheckDailyCost reports whether adding estCost to today's running total
// would stay at or under the configured daily budget. Resets the running
// total first if local midnight has passed since the last reset.
func (l *Limiter) CheckDailyCost(estCost float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeResetDaily(l.now())
	ok := l.dailyCost+estCost <= l.maxDailyCostUSD
	if !ok {
		callsRejectedTotal.WithLabelValues("cost").Inc()
	}
	return ok
}

// RecordCall appends the current timestamp to the rate-limit window and
// adds actualCost to the running daily total.
func (l *Limiter) RecordCall(actualCost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneTimestamps(now)
	l.timestamps = append(l.timestamps, now)

	l.maybeResetDaily(now)
	l.dailyCost += actualCost

	dailyCostUSD.Set(l.dailyCost)
	callsInWindow.Set(float64(len(l.timestamps)))
}

// DailyCost returns the current running total for today, for status
// reporting.
func (l *Limiter) DailyCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeResetDaily(l.now())
	return l.dailyCost
}

// CallsInWindow returns the current count of calls in the rolling window,
// for status reporting.
func (l *Limiter) CallsInWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneTimestamps(l.now())
	return len(l.timestamps)
}

// pruneTimestamps drops timestamps older than one minute. Caller holds l.mu.
func (l *Limiter) pruneTimestamps(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(l.timestamps) && l.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.timestamps = l.timestamps[i:]
	}
}

// maybeResetDaily zeroes the running total if local midnight has passed.
// Caller holds l.mu.
func (l *Limiter) maybeResetDaily(now time.Time) {
	if !now.Before(l.dailyCostResetAt) {
		l.dailyCost = 0
		l.dailyCostResetAt = nextMidnight(now)
	}
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
