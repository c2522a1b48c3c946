package calendar

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/drewfead/daybook/internal/planner"
)

// mapEvent converts a Google Calendar event to the planner model, stamping
// the source calendar and account.
func mapEvent(account planner.AccountKind, calendarID string, e *calendar.Event) planner.CalendarEvent {
	return planner.CalendarEvent{
		ID:               e.Id,
		Title:            e.Summary,
		Description:      e.Description,
		Location:         e.Location,
		Start:            mapEventTime(e.Start),
		End:              mapEventTime(e.End),
		CalendarID:       calendarID,
		Account:          account,
		RecurringEventID: e.RecurringEventId,
		Recurrence:       e.Recurrence,
	}
}

// mapEventTime resolves the wire endpoint. A populated Date marks a date-only
// (all-day) endpoint, resolved to local midnight; DateTime is an RFC3339
// instant. Anything unparseable resolves to the zero endpoint.
func mapEventTime(dt *calendar.EventDateTime) planner.EventTime {
	if dt == nil {
		return planner.EventTime{}
	}

	if dt.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", dt.Date, time.Local)
		if err != nil {
			return planner.EventTime{}
		}
		return planner.EventTime{At: day, DateOnly: true}
	}

	if dt.DateTime != "" {
		at, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return planner.EventTime{}
		}
		return planner.EventTime{At: at}
	}

	return planner.EventTime{}
}

func mapSource(item *calendar.CalendarListEntry) planner.CalendarSource {
	return planner.CalendarSource{
		ID:              item.Id,
		Name:            item.Summary,
		ForegroundColor: item.ForegroundColor,
		BackgroundColor: item.BackgroundColor,
		Primary:         item.Primary,
	}
}
