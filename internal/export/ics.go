// Package export renders event lists as interchange formats for other
// tools.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/drewfead/daybook/internal/planner"
)

const productID = "-//daybook//daybook//EN"

// WriteICS renders the events as an iCalendar (RFC 5545) document. All-day
// events become VALUE=DATE entries with an exclusive end date; events
// without a start time cannot be expressed and are skipped.
func WriteICS(w io.Writer, events []planner.CalendarEvent, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}

		ve := cal.AddEvent(uidFor(ev))
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}

		if ev.AllDay() {
			ve.SetAllDayStartAt(ev.Start.At)
			end := ev.End.At
			if ev.End.IsZero() || !end.After(ev.Start.At) {
				end = ev.Start.At.AddDate(0, 0, 1)
			}
			ve.SetAllDayEndAt(end)
			continue
		}

		ve.SetStartAt(ev.Start.At)
		end := ev.End.At
		if ev.End.IsZero() {
			end = ev.Start.At
		}
		ve.SetEndAt(end)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("unable to write calendar: %w", err)
	}
	return nil
}

func uidFor(ev planner.CalendarEvent) string {
	if ev.ID != "" {
		return fmt.Sprintf("%s@daybook", ev.ID)
	}
	return fmt.Sprintf("%s-%d@daybook", ev.CalendarID, ev.Start.At.Unix())
}
