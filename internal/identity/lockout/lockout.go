// Package lockout throttles repeated login failures. Failures are counted
// per (email, IP) pair in a sliding window; crossing the threshold locks the
// pair out until the lock expires. A successful login clears the counter.
package lockout

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config bounds the failure window and the lock it triggers.
type Config struct {
	AttemptsPerWindow int
	Window            time.Duration
	LockDuration      time.Duration
}

func DefaultConfig() Config {
	return Config{
		AttemptsPerWindow: 5,
		Window:            15 * time.Minute,
		LockDuration:      15 * time.Minute,
	}
}

type record struct {
	failures     int
	firstFailure time.Time
	lockedUntil  time.Time
}

// Guard tracks login failures in memory. A nil *Guard is valid and disables
// throttling.
type Guard struct {
	mu      sync.Mutex
	records map[string]*record
	cfg     Config
	now     func() time.Time
}

func NewGuard(cfg Config) *Guard {
	return &Guard{
		records: make(map[string]*record),
		cfg:     cfg,
		now:     time.Now,
	}
}

func key(email, ip string) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(email), ip)
}

// Allow reports whether a login attempt may proceed. When locked it returns
// false and the remaining lock duration.
func (g *Guard) Allow(email, ip string) (time.Duration, bool) {
	if g == nil {
		return 0, true
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[key(email, ip)]
	if !ok {
		return 0, true
	}

	now := g.now()
	if now.Before(rec.lockedUntil) {
		return rec.lockedUntil.Sub(now), false
	}
	if now.Sub(rec.firstFailure) > g.cfg.Window {
		delete(g.records, key(email, ip))
		return 0, true
	}
	if rec.failures >= g.cfg.AttemptsPerWindow {
		rec.lockedUntil = now.Add(g.cfg.LockDuration)
		return g.cfg.LockDuration, false
	}
	return 0, true
}

// RecordFailure counts one failed attempt. The counter restarts when the
// previous window has lapsed.
func (g *Guard) RecordFailure(email, ip string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	k := key(email, ip)
	rec, ok := g.records[k]
	if !ok || now.Sub(rec.firstFailure) > g.cfg.Window {
		g.records[k] = &record{failures: 1, firstFailure: now}
		return
	}
	rec.failures++
	if rec.failures >= g.cfg.AttemptsPerWindow {
		rec.lockedUntil = now.Add(g.cfg.LockDuration)
	}
}

// Clear drops the failure record after a successful login.
func (g *Guard) Clear(email, ip string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records, key(email, ip))
}
