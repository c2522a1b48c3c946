// Package layout computes day-view timeline geometry: all-day row sizing,
// overlap clusters for timed events, and per-event pixel boxes. It is pure
// computation over event lists; nothing here talks to the network or the
// cache.
package layout

import (
	"time"

	"github.com/drewfead/daybook/internal/planner"
)

// Config holds the geometry knobs for a day column. Zero fields take the
// defaults below.
type Config struct {
	// HourHeight is the vertical pixel span of one hour.
	HourHeight float64
	// ColumnWidth is the full usable width of the day column.
	ColumnWidth float64
	// MinEventHeight floors the height of very short events so they stay
	// clickable.
	MinEventHeight float64
	// Gap is the horizontal space subtracted from each event box so
	// side-by-side events do not touch.
	Gap float64
	// AllDayItemHeight and AllDayPadding size one row of the all-day band.
	AllDayItemHeight float64
	AllDayPadding    float64
	// BaseHour is the first hour drawn on the grid; VisibleHours is how many
	// hours the grid spans from there.
	BaseHour     int
	VisibleHours int
}

const (
	defaultHourHeight       = 60
	defaultColumnWidth      = 200
	defaultMinEventHeight   = 20
	defaultGap              = 2
	defaultAllDayItemHeight = 20
	defaultAllDayPadding    = 4
	defaultVisibleHours     = 24

	minAllDayRowHeight = 20
)

func (c Config) withDefaults() Config {
	if c.HourHeight <= 0 {
		c.HourHeight = defaultHourHeight
	}
	if c.ColumnWidth <= 0 {
		c.ColumnWidth = defaultColumnWidth
	}
	if c.MinEventHeight <= 0 {
		c.MinEventHeight = defaultMinEventHeight
	}
	if c.Gap < 0 {
		c.Gap = defaultGap
	}
	if c.AllDayItemHeight <= 0 {
		c.AllDayItemHeight = defaultAllDayItemHeight
	}
	if c.AllDayPadding < 0 {
		c.AllDayPadding = defaultAllDayPadding
	}
	if c.VisibleHours <= 0 {
		c.VisibleHours = defaultVisibleHours
	}
	return c
}

// EventBox is the computed geometry for one timed event: its cluster
// position plus the pixel box relative to the top-left of the hour grid.
type EventBox struct {
	Event   planner.CalendarEvent
	Column  int
	Columns int
	Left    float64
	Width   float64
	Top     float64
	Height  float64
}

// DayLayout is the full geometry for one rendered day.
type DayLayout struct {
	Day             time.Time
	AllDay          []planner.CalendarEvent
	AllDayRowHeight float64
	Timed           []EventBox
}

// Engine computes layouts for one column geometry.
type Engine struct {
	cfg Config
}

// New creates an engine, filling unset Config fields with defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Day lays out the given events for one rendered day. All-day events that
// cover the day land in the all-day band; timed events starting on the day
// are clustered by overlap and boxed. Events the day does not show are
// ignored, so callers can pass a whole month's list.
func (e *Engine) Day(day time.Time, events []planner.CalendarEvent) DayLayout {
	day = planner.StartOfDay(day)

	sorted := make([]planner.CalendarEvent, len(events))
	copy(sorted, events)
	planner.SortEvents(sorted)

	var allDay []planner.CalendarEvent
	var timed []planner.CalendarEvent
	for _, ev := range sorted {
		switch {
		case ev.Start.IsZero():
			// Nothing to position without a start time.
		case ev.AllDay():
			if coversDay(ev, day) {
				allDay = append(allDay, ev)
			}
		case planner.SameDay(day, ev.Start.At):
			timed = append(timed, ev)
		}
	}

	return DayLayout{
		Day:             day,
		AllDay:          allDay,
		AllDayRowHeight: e.AllDayRowHeight(len(allDay)),
		Timed:           e.boxes(timed),
	}
}

// AllDayRowHeight returns the height of the all-day band for the given
// number of events, never below the minimum row height.
func (e *Engine) AllDayRowHeight(count int) float64 {
	h := float64(count) * (e.cfg.AllDayItemHeight + e.cfg.AllDayPadding)
	if h < minAllDayRowHeight {
		return minAllDayRowHeight
	}
	return h
}

// NowIndicator returns the vertical offset of the current-time line for the
// rendered day. The line only shows when the rendered day is today and the
// current hour falls inside the visible grid.
func (e *Engine) NowIndicator(day, now time.Time) (float64, bool) {
	if !planner.SameDay(day, now) {
		return 0, false
	}
	hour := now.Hour()
	if hour < e.cfg.BaseHour || hour >= e.cfg.BaseHour+e.cfg.VisibleHours {
		return 0, false
	}
	return e.offsetFor(now), true
}

// boxes clusters the timed events (already in start order) and computes
// their pixel boxes. Events in the same cluster share the column width
// evenly, in start order.
func (e *Engine) boxes(timed []planner.CalendarEvent) []EventBox {
	clusters := formClusters(timed)

	var out []EventBox
	for _, cluster := range clusters {
		k := len(cluster)
		band := e.cfg.ColumnWidth / float64(k)
		for i, ev := range cluster {
			out = append(out, EventBox{
				Event:   ev,
				Column:  i,
				Columns: k,
				Left:    float64(i) * band,
				Width:   band - e.cfg.Gap,
				Top:     e.offsetFor(ev.Start.At),
				Height:  e.heightFor(ev),
			})
		}
	}
	return out
}

// offsetFor converts a wall-clock instant to a vertical pixel offset from
// the top of the hour grid.
func (e *Engine) offsetFor(t time.Time) float64 {
	return float64(t.Hour()-e.cfg.BaseHour)*e.cfg.HourHeight +
		float64(t.Minute())*(e.cfg.HourHeight/60)
}

// heightFor converts an event's duration to a pixel height, floored at the
// minimum. Zero and negative durations get the floor.
func (e *Engine) heightFor(ev planner.CalendarEvent) float64 {
	var h float64
	if !ev.End.IsZero() {
		h = ev.End.At.Sub(ev.Start.At).Hours() * e.cfg.HourHeight
	}
	if h < e.cfg.MinEventHeight {
		return e.cfg.MinEventHeight
	}
	return h
}

// interval is an event's span in minutes from midnight, half-open.
type interval struct {
	start float64
	end   float64
}

func intervalOf(ev planner.CalendarEvent) interval {
	start := minutesOf(ev.Start.At)
	end := start
	if !ev.End.IsZero() {
		if d := ev.End.At.Sub(ev.Start.At).Minutes(); d > 0 {
			end = start + d
		}
	}
	return interval{start: start, end: end}
}

func minutesOf(t time.Time) float64 {
	return float64(t.Hour())*60 + float64(t.Minute())
}

// intersects reports half-open overlap of the two spans.
func intersects(a, b interval) bool {
	return a.start < b.end && b.start < a.end
}

// formClusters groups events into overlap clusters with a single greedy
// pass: each event joins the first existing cluster it intersects any member
// of, otherwise it starts a new one. The result depends on input order, so
// callers feed events sorted by start.
func formClusters(events []planner.CalendarEvent) [][]planner.CalendarEvent {
	var clusters [][]planner.CalendarEvent
	var spans [][]interval

next:
	for _, ev := range events {
		span := intervalOf(ev)
		for i, cluster := range spans {
			for _, member := range cluster {
				if intersects(span, member) {
					clusters[i] = append(clusters[i], ev)
					spans[i] = append(spans[i], span)
					continue next
				}
			}
		}
		clusters = append(clusters, []planner.CalendarEvent{ev})
		spans = append(spans, []interval{span})
	}
	return clusters
}

// coversDay reports whether the all-day event spans the given day, using the
// convention that the end date of an all-day event is exclusive. Events
// without an end cover exactly their start day.
func coversDay(ev planner.CalendarEvent, day time.Time) bool {
	start := planner.StartOfDay(ev.Start.At)
	end := start.AddDate(0, 0, 1)
	if !ev.End.IsZero() {
		if e := planner.StartOfDay(ev.End.At); e.After(start) {
			end = e
		}
	}
	return !day.Before(start) && day.Before(end)
}
