package planner

import (
	"testing"
	"time"
)

func TestParseAccountKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AccountKind
		wantErr bool
	}{
		{name: "personal", input: "personal", want: AccountPersonal},
		{name: "professional", input: "professional", want: AccountProfessional},
		{name: "mixed case with spaces", input: "  Personal ", want: AccountPersonal},
		{name: "unknown", input: "work", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccountKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccountKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLikelyRecurring(t *testing.T) {
	tests := []struct {
		name  string
		event CalendarEvent
		want  bool
	}{
		{
			name:  "recurring instance id set",
			event: CalendarEvent{ID: "a", RecurringEventID: "parent"},
			want:  true,
		},
		{
			name:  "recurrence rules present",
			event: CalendarEvent{ID: "b", Recurrence: []string{"RRULE:FREQ=WEEKLY"}},
			want:  true,
		},
		{
			name:  "neither",
			event: CalendarEvent{ID: "c"},
			want:  false,
		},
		{
			name:  "empty recurrence slice",
			event: CalendarEvent{ID: "d", Recurrence: []string{}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.LikelyRecurring(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAllDayDerivedFromStart(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.Local)

	allDay := CalendarEvent{Start: EventTime{At: day, DateOnly: true}}
	if !allDay.AllDay() {
		t.Error("expected date-only start to mark the event all-day")
	}

	timed := CalendarEvent{Start: EventTime{At: day.Add(9 * time.Hour)}}
	if timed.AllDay() {
		t.Error("expected instant start to mark the event timed")
	}
}

func TestSortEvents(t *testing.T) {
	at := func(h int) EventTime {
		return EventTime{At: time.Date(2026, 8, 3, h, 0, 0, 0, time.UTC)}
	}
	events := []CalendarEvent{
		{ID: "z-no-start"},
		{ID: "late", Start: at(15)},
		{ID: "b-tie", Start: at(9)},
		{ID: "a-no-start"},
		{ID: "a-tie", Start: at(9)},
	}

	SortEvents(events)

	wantOrder := []string{"a-tie", "b-tie", "late", "a-no-start", "z-no-start"}
	for i, want := range wantOrder {
		if events[i].ID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, events[i].ID)
		}
	}
}

func TestSameDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, ny)
	lateUTC := time.Date(2026, 8, 4, 2, 0, 0, 0, time.UTC) // still Aug 3 in New York

	if !SameDay(day, lateUTC) {
		t.Error("expected instants on the same local day to match")
	}
	if SameDay(day, day.AddDate(0, 0, 1)) {
		t.Error("expected adjacent days not to match")
	}
}
