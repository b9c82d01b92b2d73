// Package cache memoizes risk analyses at the call boundary. Scoring itself
// stays pure and unaware of caching.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/spic/internal/risk"
)

// Source produces a fresh analysis for an operation.
type Source interface {
	Analyze(ctx context.Context, operationID string) (*risk.Analysis, error)
}

type entry struct {
	analysis *risk.Analysis
	expires  time.Time
}

// Analyzer memoizes Source.Analyze per operation for a fixed TTL. Errors are
// never cached.
type Analyzer struct {
	src   Source
	ttl   time.Duration
	clock risk.Clock

	mu      sync.Mutex
	entries map[string]entry
	// gens counts invalidations per operation; epoch counts purges. A miss
	// only stores its result if neither moved while the source ran.
	gens   map[string]uint64
	epoch  uint64
	hits   int
	misses int
}

// NewAnalyzer wraps src. A non-positive ttl disables memoization.
func NewAnalyzer(src Source, ttl time.Duration, clock risk.Clock) *Analyzer {
	if clock == nil {
		clock = risk.SystemClock{}
	}
	return &Analyzer{src: src, ttl: ttl, clock: clock, entries: make(map[string]entry), gens: make(map[string]uint64)}
}

func (a *Analyzer) Analyze(ctx context.Context, operationID string) (*risk.Analysis, error) {
	if a.ttl <= 0 {
		return a.src.Analyze(ctx, operationID)
	}

	now := a.clock.Now()
	a.mu.Lock()
	if e, ok := a.entries[operationID]; ok && now.Before(e.expires) {
		a.hits++
		a.mu.Unlock()
		return e.analysis, nil
	}
	a.misses++
	gen, epoch := a.gens[operationID], a.epoch
	a.mu.Unlock()

	analysis, err := a.src.Analyze(ctx, operationID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.gens[operationID] == gen && a.epoch == epoch {
		a.entries[operationID] = entry{analysis: analysis, expires: now.Add(a.ttl)}
	}
	a.mu.Unlock()
	return analysis, nil
}

// Invalidate drops the cached analysis of one operation.
func (a *Analyzer) Invalidate(operationID string) {
	a.mu.Lock()
	delete(a.entries, operationID)
	a.gens[operationID]++
	a.mu.Unlock()
}

// Purge drops every cached analysis.
func (a *Analyzer) Purge() {
	a.mu.Lock()
	a.entries = make(map[string]entry)
	a.gens = make(map[string]uint64)
	a.epoch++
	a.mu.Unlock()
}

// Stats returns cache hits and misses since creation.
func (a *Analyzer) Stats() (hits, misses int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits, a.misses
}
