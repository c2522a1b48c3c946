// Package preload warms the event cache for the months adjacent to the one
// on screen, so month navigation lands on cached data instead of the
// network.
package preload

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drewfead/daybook/internal/planner"
)

// Fetcher fetches events for one linked account.
type Fetcher interface {
	Account() planner.AccountKind
	Events(ctx context.Context, r planner.DateRange) ([]planner.CalendarEvent, error)
}

// Cache is the slice of the event cache the warmer needs: freshness checks
// to avoid redundant fetches, and writes for the fetched ranges.
type Cache interface {
	Fresh(key string) bool
	Put(key string, events []planner.CalendarEvent)
}

// Warmer prefetches adjacent months for every linked account.
type Warmer struct {
	cache    Cache
	fetchers []Fetcher
	months   int
}

// New creates a warmer covering the given number of months on each side of
// the pivot, at least one.
func New(cache Cache, fetchers []Fetcher, months int) *Warmer {
	if months < 1 {
		months = 1
	}
	return &Warmer{cache: cache, fetchers: fetchers, months: months}
}

// WarmAdjacent fetches and caches the months around the pivot's month for
// every linked account, in parallel. Ranges already fresh in either cache
// tier are skipped. Warming is best-effort: fetch failures are logged and
// swallowed, and nothing outside the cache is touched.
func (w *Warmer) WarmAdjacent(ctx context.Context, pivot time.Time) {
	month := planner.MonthOf(pivot)

	ranges := make([]planner.DateRange, 0, 2*w.months)
	for i := 1; i <= w.months; i++ {
		ranges = append(ranges, month.AddMonths(-i), month.AddMonths(i))
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range w.fetchers {
		for _, r := range ranges {
			key := planner.CacheKey(f.Account(), r)
			if w.cache.Fresh(key) {
				slog.Debug("skipping warm for fresh range", "key", key)
				continue
			}
			g.Go(func() error {
				events, err := f.Events(ctx, r)
				if err != nil {
					slog.Debug("unable to warm range", "key", key, "error", err)
					return nil
				}
				w.cache.Put(key, events)
				slog.Debug("warmed range", "key", key, "events", len(events))
				return nil
			})
		}
	}
	// Every goroutine returns nil: warm failures never propagate.
	_ = g.Wait()
}
