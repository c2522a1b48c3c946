package export

import (
	"strings"
	"testing"
	"time"

	"github.com/drewfead/daybook/internal/planner"
)

func TestWriteICS(t *testing.T) {
	day := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	events := []planner.CalendarEvent{
		{
			ID:       "evt-1",
			Title:    "Team sync",
			Location: "Room 4",
			Start:    planner.EventTime{At: day.Add(9 * time.Hour)},
			End:      planner.EventTime{At: day.Add(10 * time.Hour)},
		},
		{
			ID:    "evt-2",
			Title: "Offsite",
			Start: planner.EventTime{At: day, DateOnly: true},
			End:   planner.EventTime{At: day.AddDate(0, 0, 2), DateOnly: true},
		},
	}

	var sb strings.Builder
	if err := WriteICS(&sb, events, day.Add(8*time.Hour)); err != nil {
		t.Fatalf("failed to write ics: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:evt-1@daybook",
		"SUMMARY:Team sync",
		"LOCATION:Room 4",
		"UID:evt-2@daybook",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}

	if !strings.Contains(out, "VALUE=DATE") {
		t.Errorf("expected all-day event to use date values\n%s", out)
	}
	if !strings.Contains(out, "20260814") {
		t.Errorf("expected exclusive all-day end date 20260814\n%s", out)
	}
}

func TestWriteICSSkipsUndatedEvents(t *testing.T) {
	events := []planner.CalendarEvent{
		{ID: "evt-3", Title: "Someday"},
	}

	var sb strings.Builder
	if err := WriteICS(&sb, events, time.Now()); err != nil {
		t.Fatalf("failed to write ics: %v", err)
	}

	if strings.Contains(sb.String(), "Someday") {
		t.Errorf("expected undated event to be skipped\n%s", sb.String())
	}
	if strings.Contains(sb.String(), "BEGIN:VEVENT") {
		t.Errorf("expected no events in output\n%s", sb.String())
	}
}

func TestWriteICSDefaultsSingleDayAllDay(t *testing.T) {
	day := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	events := []planner.CalendarEvent{
		{
			ID:    "evt-4",
			Title: "Holiday",
			Start: planner.EventTime{At: day, DateOnly: true},
		},
	}

	var sb strings.Builder
	if err := WriteICS(&sb, events, day); err != nil {
		t.Fatalf("failed to write ics: %v", err)
	}

	// A one-day all-day event ends on the next calendar day, exclusive.
	if !strings.Contains(sb.String(), "20260813") {
		t.Errorf("expected exclusive end date 20260813\n%s", sb.String())
	}
}
