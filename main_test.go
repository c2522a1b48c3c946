package main

import (
	"strings"
	"testing"
	"time"

	"github.com/drewfead/daybook/internal/config"
	"github.com/drewfead/daybook/internal/layout"
	"github.com/drewfead/daybook/internal/orchestrator"
	"github.com/drewfead/daybook/internal/planner"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{
			name: "explicit month",
			raw:  "2026-08",
			want: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name: "single digit month",
			raw:  "2026-02",
			want: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:    "day instead of month",
			raw:     "2026-08-12",
			wantErr: true,
		},
		{
			name:    "garbage",
			raw:     "next month",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseMonth(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse month: %v", err)
			}
			if !r.Start.Equal(tt.want) {
				t.Errorf("expected start %v, got %v", tt.want, r.Start)
			}
			if !r.End.Equal(tt.want.AddDate(0, 1, 0)) {
				t.Errorf("expected end %v, got %v", tt.want.AddDate(0, 1, 0), r.End)
			}
		})
	}
}

func TestParseMonthDefaultsToCurrent(t *testing.T) {
	r, err := parseMonth("")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	if want := planner.MonthOf(time.Now()); !r.Start.Equal(want.Start) {
		t.Errorf("expected current month start %v, got %v", want.Start, r.Start)
	}
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-08-12")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	if want := time.Date(2026, time.August, 12, 0, 0, 0, 0, time.Local); !day.Equal(want) {
		t.Errorf("expected %v, got %v", want, day)
	}

	if _, err := parseDay("12/08/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}

	today, err := parseDay("")
	if err != nil {
		t.Fatalf("parse empty day: %v", err)
	}
	if !today.Equal(planner.StartOfDay(time.Now())) {
		t.Errorf("expected today at midnight, got %v", today)
	}
}

func TestEventClock(t *testing.T) {
	start := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event planner.CalendarEvent
		want  string
	}{
		{
			name: "timed with end",
			event: planner.CalendarEvent{
				Start: planner.EventTime{At: start},
				End:   planner.EventTime{At: start.Add(30 * time.Minute)},
			},
			want: "09:00-09:30",
		},
		{
			name: "timed without end",
			event: planner.CalendarEvent{
				Start: planner.EventTime{At: start},
			},
			want: "09:00",
		},
		{
			name: "all day",
			event: planner.CalendarEvent{
				Start: planner.EventTime{At: start, DateOnly: true},
			},
			want: "all day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventClock(tt.event); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrintAgendaGroupsByDay(t *testing.T) {
	r := planner.MonthOf(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))
	state := orchestrator.State{
		Range: r,
		Events: map[planner.AccountKind][]planner.CalendarEvent{
			planner.AccountPersonal: {
				{
					ID:    "dentist",
					Title: "Dentist",
					Start: planner.EventTime{At: time.Date(2026, time.August, 14, 8, 30, 0, 0, time.UTC)},
					End:   planner.EventTime{At: time.Date(2026, time.August, 14, 9, 0, 0, 0, time.UTC)},
				},
			},
			planner.AccountProfessional: {
				{
					ID:    "standup",
					Title: "Standup",
					Start: planner.EventTime{At: time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)},
					End:   planner.EventTime{At: time.Date(2026, time.August, 12, 9, 15, 0, 0, time.UTC)},
				},
				{
					ID:    "someday",
					Title: "Write the report",
				},
			},
		},
		Calendars: map[planner.AccountKind][]planner.CalendarSource{
			planner.AccountPersonal: {{ID: "primary", Name: "Home"}},
		},
	}

	var out strings.Builder
	printAgenda(&out, state)
	got := out.String()

	if !strings.Contains(got, "personal calendars: Home") {
		t.Errorf("expected published calendar list in output, got:\n%s", got)
	}
	if !strings.Contains(got, "Wed Aug 12 2026") || !strings.Contains(got, "Fri Aug 14 2026") {
		t.Errorf("expected day headers for both days, got:\n%s", got)
	}
	if !strings.Contains(got, "Standup") || !strings.Contains(got, "Dentist") {
		t.Errorf("expected both events in output, got:\n%s", got)
	}
	if !strings.Contains(got, "unscheduled") {
		t.Errorf("expected the startless event to print as unscheduled, got:\n%s", got)
	}

	// Merged order puts the earlier standup before the dentist visit.
	if strings.Index(got, "Standup") > strings.Index(got, "Dentist") {
		t.Errorf("expected events in start order, got:\n%s", got)
	}
}

func TestPrintAgendaEmptyRange(t *testing.T) {
	r := planner.MonthOf(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))

	var out strings.Builder
	printAgenda(&out, orchestrator.State{Range: r})

	if !strings.Contains(out.String(), "No events") {
		t.Errorf("expected empty-range notice, got:\n%s", out.String())
	}
}

func TestPrintAgendaShowsErrorMessage(t *testing.T) {
	var out strings.Builder
	printAgenda(&out, orchestrator.State{ErrorMessage: "unable to refresh calendars for any linked account"})

	if !strings.HasPrefix(out.String(), "! unable to refresh") {
		t.Errorf("expected leading error line, got:\n%s", out.String())
	}
}

func TestPrintDayLayout(t *testing.T) {
	day := time.Date(2026, time.August, 12, 0, 0, 0, 0, time.UTC)
	state := orchestrator.State{
		Events: map[planner.AccountKind][]planner.CalendarEvent{
			planner.AccountPersonal: {
				{
					ID:    "errand",
					Title: "Errand",
					Start: planner.EventTime{At: day.Add(9 * time.Hour)},
					End:   planner.EventTime{At: day.Add(10 * time.Hour)},
				},
				{
					ID:    "fair",
					Title: "Street fair",
					Start: planner.EventTime{At: day, DateOnly: true},
				},
			},
		},
	}

	var out strings.Builder
	printDayLayout(&out, layout.New(layout.Config{}), day, state)
	got := out.String()

	if !strings.Contains(got, "all-day row: height=24 events=1") {
		t.Errorf("expected all-day band summary, got:\n%s", got)
	}
	if !strings.Contains(got, "Street fair") {
		t.Errorf("expected the all-day event listed, got:\n%s", got)
	}
	if !strings.Contains(got, "y=540") {
		t.Errorf("expected the timed box at 540px, got:\n%s", got)
	}
	if !strings.Contains(got, "Errand") {
		t.Errorf("expected the timed event listed, got:\n%s", got)
	}
}

func TestLayoutConfigMapsRuntimeGeometry(t *testing.T) {
	cfg := layoutConfig(testRuntime())
	eng := layout.New(cfg)

	// Base hour 8 means 09:30 sits 90px down at 60px per hour.
	day := time.Date(2026, time.August, 12, 0, 0, 0, 0, time.UTC)
	dl := eng.Day(day, []planner.CalendarEvent{{
		ID:    "coffee",
		Title: "Coffee",
		Start: planner.EventTime{At: day.Add(9*time.Hour + 30*time.Minute)},
		End:   planner.EventTime{At: day.Add(10 * time.Hour)},
	}})

	if len(dl.Timed) != 1 {
		t.Fatalf("expected 1 timed box, got %d", len(dl.Timed))
	}
	if dl.Timed[0].Top != 90 {
		t.Errorf("expected top 90, got %v", dl.Timed[0].Top)
	}
}

func testRuntime() config.Runtime {
	return config.Runtime{
		HourHeight:       60,
		ColumnWidth:      200,
		MinEventHeight:   20,
		Gap:              2,
		AllDayItemHeight: 20,
		AllDayPadding:    4,
		BaseHour:         8,
		VisibleHours:     12,
	}
}
