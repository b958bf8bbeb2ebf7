package progression

import (
	"context"
)

// LifetimeStats keeps running totals of cumulative metrics across all runs.
// Achievements that count lifetime totals are fed from these sums.
type LifetimeStats struct {
	deps   Deps
	totals map[string]int
}

// NewLifetimeStats loads the persisted totals.
func NewLifetimeStats(ctx context.Context, deps Deps) *LifetimeStats {
	s := &LifetimeStats{
		deps:   deps.withDefaults(),
		totals: make(map[string]int),
	}
	if snap, ok := loadSnapshot(ctx, s.deps, LifetimeKey, noLegacy[LifetimeSnapshot]); ok {
		for k, v := range snap.Totals {
			s.totals[k] = v
		}
	}
	return s
}

// Add increases metric by delta and returns the new total.
// Non-positive deltas leave the total unchanged.
func (s *LifetimeStats) Add(ctx context.Context, metric string, delta int) int {
	s.AddAll(ctx, map[string]int{metric: delta})
	return s.totals[metric]
}

// AddAll applies several deltas with a single save and returns the new totals
// of the metrics that changed.
func (s *LifetimeStats) AddAll(ctx context.Context, deltas map[string]int) map[string]int {
	updated := make(map[string]int, len(deltas))
	for metric, delta := range deltas {
		if delta <= 0 {
			continue
		}
		s.totals[metric] += delta
		updated[metric] = s.totals[metric]
	}
	if len(updated) > 0 {
		saveSnapshot(ctx, s.deps, LifetimeKey, LifetimeSnapshot{Totals: s.Totals()})
	}
	return updated
}

func (s *LifetimeStats) Total(metric string) int {
	return s.totals[metric]
}

// Totals returns a copy of every total.
func (s *LifetimeStats) Totals() map[string]int {
	out := make(map[string]int, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

// Reset zeroes every total.
func (s *LifetimeStats) Reset(ctx context.Context) {
	clear(s.totals)
	saveSnapshot(ctx, s.deps, LifetimeKey, LifetimeSnapshot{Totals: map[string]int{}})
}
