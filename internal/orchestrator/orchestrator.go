// Package orchestrator coordinates the event cache, the per-account
// calendar clients, and the preloader behind one mutex-guarded façade. It
// owns the published view state: renderers only ever see snapshots.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/drewfead/daybook/internal/planner"
)

// Fetcher fetches calendars and events for one linked account.
type Fetcher interface {
	Account() planner.AccountKind
	FetchRange(ctx context.Context, r planner.DateRange) ([]planner.CalendarSource, []planner.CalendarEvent, error)
}

// Cache is the slice of the event cache the orchestrator needs.
type Cache interface {
	Get(key string) ([]planner.CalendarEvent, bool)
	Put(key string, events []planner.CalendarEvent)
	Clear()
	Flush()
}

// Warmer prefetches ranges adjacent to the one just loaded.
type Warmer interface {
	WarmAdjacent(ctx context.Context, pivot time.Time)
}

// State is the published view state: per-account event and calendar lists
// for the loaded range, plus the loading flag and the user-visible error
// message. Partial failures leave ErrorMessage empty.
type State struct {
	Range        planner.DateRange
	Events       map[planner.AccountKind][]planner.CalendarEvent
	Calendars    map[planner.AccountKind][]planner.CalendarSource
	Loading      bool
	ErrorMessage string
}

// Merged flattens the per-account lists into one sorted event list.
func (s State) Merged() []planner.CalendarEvent {
	var out []planner.CalendarEvent
	for _, events := range s.Events {
		out = append(out, events...)
	}
	planner.SortEvents(out)
	return out
}

func (s State) clone() State {
	out := s
	out.Events = make(map[planner.AccountKind][]planner.CalendarEvent, len(s.Events))
	for account, events := range s.Events {
		copied := make([]planner.CalendarEvent, len(events))
		copy(copied, events)
		out.Events[account] = copied
	}
	out.Calendars = make(map[planner.AccountKind][]planner.CalendarSource, len(s.Calendars))
	for account, sources := range s.Calendars {
		copied := make([]planner.CalendarSource, len(sources))
		copy(copied, sources)
		out.Calendars[account] = copied
	}
	return out
}

func emptyState(r planner.DateRange, loading bool) State {
	return State{
		Range:     r,
		Events:    make(map[planner.AccountKind][]planner.CalendarEvent),
		Calendars: make(map[planner.AccountKind][]planner.CalendarSource),
		Loading:   loading,
	}
}

// maxConcurrentFetches caps the fetch fan-out of one load; one task per
// linked account, at most two at a time.
const maxConcurrentFetches = 2

const allAccountsFailedMessage = "unable to refresh calendars for any linked account"

// Options wires an Orchestrator. Warmer may be nil to disable preloading.
type Options struct {
	Cache    Cache
	Fetchers []Fetcher
	Warmer   Warmer
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	cache    Cache
	fetchers []Fetcher
	warmer   Warmer

	mu    sync.Mutex
	gen   uint64
	state State

	background sync.WaitGroup
}

// New creates an orchestrator from the given options.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		cache:    opts.Cache,
		fetchers: opts.Fetchers,
		warmer:   opts.Warmer,
		state:    emptyState(planner.DateRange{}, false),
	}
}

// Load resolves the range for every linked account: fresh cache entries are
// published immediately without touching the network, the rest are fetched
// concurrently and written through the cache, each account's lists updating
// independently as its fetch completes. After a fully successful load the
// adjacent months are warmed in the background.
//
// The returned state is the one settled by this call; if a newer Load or
// Clear supersedes it mid-flight, the newer state is returned instead.
func (o *Orchestrator) Load(ctx context.Context, r planner.DateRange) State {
	return o.load(ctx, r, false)
}

// Reload behaves like Load but skips cache reads, forcing a network fetch
// for every linked account. Results still write through the cache.
func (o *Orchestrator) Reload(ctx context.Context, r planner.DateRange) State {
	return o.load(ctx, r, true)
}

func (o *Orchestrator) load(ctx context.Context, r planner.DateRange, force bool) State {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.state = emptyState(r, true)
	o.mu.Unlock()

	var pending []Fetcher
	for _, f := range o.fetchers {
		if !force {
			if events, ok := o.cache.Get(planner.CacheKey(f.Account(), r)); ok {
				slog.Debug("serving account from cache", "account", f.Account(), "range", r.String())
				o.publishEvents(gen, f.Account(), events)
				continue
			}
		}
		pending = append(pending, f)
	}

	type result struct {
		account planner.AccountKind
		err     error
	}
	results := make([]result, len(pending))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentFetches)
	for i, f := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sources, events, err := f.FetchRange(ctx, r)
			results[i] = result{account: f.Account(), err: err}
			if err != nil {
				slog.Warn("unable to refresh account", "account", f.Account(), "error", err)
				return
			}

			o.cache.Put(planner.CacheKey(f.Account(), r), events)
			o.publishFetch(gen, f.Account(), sources, events)
		}()
	}
	wg.Wait()

	var failed []result
	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res)
		}
	}

	// Partial success is not an error state: only when every linked account
	// failed does anything reach the user-visible slot.
	var message string
	if len(failed) > 0 && len(failed) == len(o.fetchers) {
		if len(failed) == 1 {
			message = failed[0].err.Error()
		} else {
			message = allAccountsFailedMessage
		}
	}
	o.settle(gen, message)

	if len(failed) == 0 && o.warmer != nil {
		warmCtx := context.WithoutCancel(ctx)
		o.background.Add(1)
		go func() {
			defer o.background.Done()
			o.warmer.WarmAdjacent(warmCtx, r.Start)
		}()
	}

	return o.Snapshot()
}

// Snapshot returns a deep copy of the current published state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Clear wipes both cache tiers and resets the published lists to empty.
// Loads still in flight when Clear is called are discarded on completion.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.gen++
	o.state = emptyState(planner.DateRange{}, false)
	o.mu.Unlock()

	o.cache.Clear()
}

// Flush blocks until background warms and pending cache writes have
// finished. Call before process exit.
func (o *Orchestrator) Flush() {
	o.background.Wait()
	o.cache.Flush()
}

// publishEvents updates one account's published event list, unless the load
// that produced it has been superseded.
func (o *Orchestrator) publishEvents(gen uint64, account planner.AccountKind, events []planner.CalendarEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		slog.Debug("discarding stale completion", "account", account)
		return
	}
	o.state.Events[account] = events
}

// publishFetch updates one account's published event and calendar lists
// after a network fetch, unless the load has been superseded.
func (o *Orchestrator) publishFetch(gen uint64, account planner.AccountKind, sources []planner.CalendarSource, events []planner.CalendarEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		slog.Debug("discarding stale completion", "account", account)
		return
	}
	o.state.Events[account] = events
	o.state.Calendars[account] = sources
}

// settle marks the load finished and records the aggregated error message.
func (o *Orchestrator) settle(gen uint64, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return
	}
	o.state.Loading = false
	o.state.ErrorMessage = message
}
