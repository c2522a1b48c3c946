// Command daybook fetches events from linked Google Calendar accounts,
// caches them locally, and prints agenda, calendar, and timeline-layout
// views of a day or month.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/drewfead/daybook/internal/auth"
	"github.com/drewfead/daybook/internal/cache"
	"github.com/drewfead/daybook/internal/calendar"
	"github.com/drewfead/daybook/internal/config"
	"github.com/drewfead/daybook/internal/export"
	"github.com/drewfead/daybook/internal/layout"
	"github.com/drewfead/daybook/internal/orchestrator"
	"github.com/drewfead/daybook/internal/planner"
	"github.com/drewfead/daybook/internal/preload"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// engine bundles the wired components behind every data-touching command.
type engine struct {
	cfg     config.Runtime
	store   *cache.Store
	clients []*calendar.Client
	orch    *orchestrator.Orchestrator
}

// buildEngine wires configuration, the persistent store, the two-tier
// cache, one calendar client per linked account, the preloader, and the
// orchestrator. Accounts without resolvable credentials still get a
// fetcher whose fetches fail with the original error, so they surface
// through the usual per-account aggregation instead of aborting startup.
func buildEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}

	// The default cache location may not exist yet. A custom cache_db path
	// is the operator's responsibility.
	if err := config.EnsureCacheDir(); err != nil {
		return nil, err
	}

	store, err := cache.OpenStore(cfg.CacheDB)
	if err != nil {
		return nil, fmt.Errorf("unable to open event cache at %s: %w", cfg.CacheDB, err)
	}

	events := cache.New(cache.Options{
		Store:      store,
		MemoryTTL:  cfg.MemoryTTL,
		PersistTTL: cfg.PersistTTL,
	})

	var clients []*calendar.Client
	var fetchers []orchestrator.Fetcher
	var warmable []preload.Fetcher
	for _, account := range cfg.Accounts {
		httpClient, err := auth.ClientFor(ctx, account)
		if err != nil {
			slog.Warn("account unavailable", "account", account, "error", err)
			fetchers = append(fetchers, unlinkedFetcher{account: account, err: err})
			continue
		}

		var client *calendar.Client
		if cfg.APIEndpoint != "" {
			client, err = calendar.NewClient(ctx, account, httpClient, cfg.APIEndpoint)
		} else {
			client, err = calendar.NewClient(ctx, account, httpClient)
		}
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("unable to create calendar client for %s: %w", account, err)
		}

		clients = append(clients, client)
		fetchers = append(fetchers, client)
		warmable = append(warmable, client)
	}

	orch := orchestrator.New(orchestrator.Options{
		Cache:    events,
		Fetchers: fetchers,
		Warmer:   preload.New(events, warmable, cfg.WarmMonths),
	})

	return &engine{cfg: cfg, store: store, clients: clients, orch: orch}, nil
}

// Close waits for background warms and pending cache writes, then releases
// the store.
func (e *engine) Close() {
	e.orch.Flush()
	if err := e.store.Close(); err != nil {
		slog.Warn("unable to close event cache", "error", err)
	}
}

// unlinkedFetcher stands in for an account whose credentials could not be
// resolved. Every fetch fails with the original error.
type unlinkedFetcher struct {
	account planner.AccountKind
	err     error
}

func (f unlinkedFetcher) Account() planner.AccountKind { return f.account }

func (f unlinkedFetcher) FetchRange(context.Context, planner.DateRange) ([]planner.CalendarSource, []planner.CalendarEvent, error) {
	return nil, nil, f.err
}

func main() {
	root := &cli.Command{
		Name:  "daybook",
		Usage: "fetch, cache, and lay out events from your linked calendars",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			calendarsCommand(),
			agendaCommand(),
			layoutCommand(),
			warmCommand(),
			exportCommand(),
			clearCommand(),
			watchCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "link an account by running its OAuth flow",
		Flags: []cli.Flag{accountFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			account, err := planner.ParseAccountKind(cmd.String("account"))
			if err != nil {
				return err
			}
			if err := auth.Login(ctx, account); err != nil {
				return fmt.Errorf("unable to link %s account: %w", account, err)
			}
			fmt.Printf("Linked %s account.\n", account)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "unlink an account by removing its stored token",
		Flags: []cli.Flag{accountFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			account, err := planner.ParseAccountKind(cmd.String("account"))
			if err != nil {
				return err
			}
			if err := auth.Logout(account); err != nil {
				return fmt.Errorf("unable to unlink %s account: %w", account, err)
			}
			fmt.Printf("Unlinked %s account.\n", account)
			return nil
		},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "list the calendars visible in each linked account",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			if len(eng.clients) == 0 {
				return errors.New("no linked accounts, run 'daybook login --account <kind>' first")
			}

			for _, client := range eng.clients {
				sources, err := client.Calendars(ctx)
				if err != nil {
					return fmt.Errorf("unable to list %s calendars: %w", client.Account(), err)
				}
				fmt.Printf("%s:\n", client.Account())
				for _, src := range sources {
					marker := " "
					if src.Primary {
						marker = "*"
					}
					fmt.Printf(" %s %s (%s)\n", marker, src.Name, src.ID)
				}
			}
			return nil
		},
	}
}

func agendaCommand() *cli.Command {
	return &cli.Command{
		Name:  "agenda",
		Usage: "load a month of events and print them day by day",
		Flags: []cli.Flag{
			monthFlag(),
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "bypass cached entries and refetch",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := monthRange(cmd)
			if err != nil {
				return err
			}

			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			var state orchestrator.State
			if cmd.Bool("refresh") {
				state = eng.orch.Reload(ctx, r)
			} else {
				state = eng.orch.Load(ctx, r)
			}

			printAgenda(os.Stdout, state)
			return nil
		},
	}
}

func layoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "print the timeline geometry for one day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "day to lay out, formatted 2006-01-02 (defaults to today)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			day, err := parseDay(cmd.String("date"))
			if err != nil {
				return err
			}

			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			state := eng.orch.Load(ctx, planner.MonthOf(day))
			if state.ErrorMessage != "" {
				return errors.New(state.ErrorMessage)
			}

			printDayLayout(os.Stdout, layout.New(layoutConfig(eng.cfg)), day, state)
			return nil
		},
	}
}

func warmCommand() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "prefetch a month and its neighbors into the cache",
		Flags: []cli.Flag{monthFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := monthRange(cmd)
			if err != nil {
				return err
			}

			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			// A successful load schedules the adjacent-month warm in the
			// background; Close waits for it to land in the cache.
			state := eng.orch.Load(ctx, r)
			if state.ErrorMessage != "" {
				return errors.New(state.ErrorMessage)
			}

			fmt.Printf("Warmed %s and %d month(s) on each side.\n", r.Start.Format("2006-01"), eng.cfg.WarmMonths)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a month of events as an iCalendar document",
		Flags: []cli.Flag{
			monthFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "file to write (defaults to stdout)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := monthRange(cmd)
			if err != nil {
				return err
			}

			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			state := eng.orch.Load(ctx, r)
			if state.ErrorMessage != "" {
				return errors.New(state.ErrorMessage)
			}

			events := state.Merged()
			path := cmd.String("output")
			if path == "" {
				return export.WriteICS(os.Stdout, events, time.Now())
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("unable to create %s: %w", path, err)
			}
			if err := export.WriteICS(f, events, time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("unable to finish writing %s: %w", path, err)
			}

			slog.Info("wrote calendar export", "path", path, "events", len(events))
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "drop all cached events",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			eng.orch.Clear()
			fmt.Println("Cache cleared.")
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "refresh the current month on a cron schedule until interrupted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			schedule, err := cron.ParseStandard(eng.cfg.WatchSchedule)
			if err != nil {
				return fmt.Errorf("invalid watch schedule %q: %w", eng.cfg.WatchSchedule, err)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			refresh := func(now time.Time) {
				state := eng.orch.Reload(ctx, planner.MonthOf(now))
				if state.ErrorMessage != "" {
					slog.Warn("refresh finished with errors", "message", state.ErrorMessage)
					return
				}
				slog.Info("refreshed calendars", "range", state.Range, "events", len(state.Merged()))
			}

			slog.Info("watching calendars", "schedule", eng.cfg.WatchSchedule)
			refresh(time.Now())

			for {
				next := schedule.Next(time.Now())
				timer := time.NewTimer(time.Until(next))
				select {
				case <-ctx.Done():
					timer.Stop()
					slog.Info("stopping watch")
					return nil
				case now := <-timer.C:
					refresh(now)
				}
			}
		},
	}
}

func accountFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "account",
		Aliases:  []string{"a"},
		Usage:    "account kind: personal or professional",
		Required: true,
	}
}

func monthFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "month",
		Usage: "calendar month to load, formatted 2006-01 (defaults to the current month)",
	}
}

// monthRange resolves the --month flag into a month-long range.
func monthRange(cmd *cli.Command) (planner.DateRange, error) {
	return parseMonth(cmd.String("month"))
}

// parseMonth parses a 2006-01 month value, defaulting to the current month.
func parseMonth(raw string) (planner.DateRange, error) {
	if raw == "" {
		return planner.MonthOf(time.Now()), nil
	}
	t, err := time.ParseInLocation("2006-01", raw, time.Local)
	if err != nil {
		return planner.DateRange{}, fmt.Errorf("invalid month %q (want 2006-01): %w", raw, err)
	}
	return planner.MonthOf(t), nil
}

// parseDay parses a --date flag, defaulting to today.
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return planner.StartOfDay(time.Now()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want 2006-01-02): %w", raw, err)
	}
	return day, nil
}

func layoutConfig(cfg config.Runtime) layout.Config {
	return layout.Config{
		HourHeight:       cfg.HourHeight,
		ColumnWidth:      cfg.ColumnWidth,
		MinEventHeight:   cfg.MinEventHeight,
		Gap:              cfg.Gap,
		AllDayItemHeight: cfg.AllDayItemHeight,
		AllDayPadding:    cfg.AllDayPadding,
		BaseHour:         cfg.BaseHour,
		VisibleHours:     cfg.VisibleHours,
	}
}

// printAgenda writes the published calendar lists and the merged events
// grouped by day. Events without a resolvable start sort last and print
// as unscheduled.
func printAgenda(w io.Writer, state orchestrator.State) {
	if state.ErrorMessage != "" {
		fmt.Fprintf(w, "! %s\n", state.ErrorMessage)
	}

	for _, kind := range planner.Kinds() {
		sources := state.Calendars[kind]
		if len(sources) == 0 {
			continue
		}
		names := make([]string, 0, len(sources))
		for _, src := range sources {
			names = append(names, src.Name)
		}
		fmt.Fprintf(w, "%s calendars: %s\n", kind, strings.Join(names, ", "))
	}

	events := state.Merged()
	if len(events) == 0 {
		fmt.Fprintf(w, "No events in %s.\n", state.Range)
		return
	}

	var day time.Time
	for _, ev := range events {
		if ev.Start.IsZero() {
			fmt.Fprintf(w, "  %-13s %s\n", "unscheduled", ev.Title)
			continue
		}
		if start := planner.StartOfDay(ev.Start.At); !start.Equal(day) {
			day = start
			fmt.Fprintf(w, "%s\n", day.Format("Mon Jan 2 2006"))
		}
		fmt.Fprintf(w, "  %-13s %s\n", eventClock(ev), ev.Title)
	}
}

// eventClock formats the hour span of a timed event, or marks all-day ones.
func eventClock(ev planner.CalendarEvent) string {
	if ev.AllDay() {
		return "all day"
	}
	if ev.End.IsZero() {
		return ev.Start.At.Format("15:04")
	}
	return ev.Start.At.Format("15:04") + "-" + ev.End.At.Format("15:04")
}

// printDayLayout dumps one day's geometry: the all-day band followed by the
// positioned timed boxes.
func printDayLayout(w io.Writer, eng *layout.Engine, day time.Time, state orchestrator.State) {
	dl := eng.Day(day, state.Merged())

	fmt.Fprintf(w, "%s\n", day.Format("Mon Jan 2 2006"))
	fmt.Fprintf(w, "all-day row: height=%.0f events=%d\n", dl.AllDayRowHeight, len(dl.AllDay))
	for _, ev := range dl.AllDay {
		fmt.Fprintf(w, "  %s\n", ev.Title)
	}
	for _, box := range dl.Timed {
		fmt.Fprintf(w, "y=%-7.1f h=%-6.1f col %d/%d x=%-7.1f w=%-7.1f %s\n",
			box.Top, box.Height, box.Column+1, box.Columns, box.Left, box.Width, box.Event.Title)
	}
	if offset, visible := eng.NowIndicator(day, time.Now()); visible {
		fmt.Fprintf(w, "now: y=%.1f\n", offset)
	}
}
