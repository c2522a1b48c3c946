// Package planner holds the domain model shared by the daybook engine:
// linked accounts, calendar sources, events, date ranges, and the error
// taxonomy surfaced by the fetch path.
package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AccountKind identifies which linked account a calendar or event belongs to.
type AccountKind string

const (
	AccountPersonal     AccountKind = "personal"
	AccountProfessional AccountKind = "professional"
)

// Kinds returns the closed set of account kinds in stable order.
func Kinds() []AccountKind {
	return []AccountKind{AccountPersonal, AccountProfessional}
}

// ParseAccountKind parses a user-supplied account name.
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(strings.ToLower(strings.TrimSpace(s))) {
	case AccountPersonal:
		return AccountPersonal, nil
	case AccountProfessional:
		return AccountProfessional, nil
	}
	return "", fmt.Errorf("unknown account kind %q (want personal or professional)", s)
}

// CalendarSource identifies one calendar within a linked account.
type CalendarSource struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ForegroundColor string `json:"foregroundColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Primary         bool   `json:"primary,omitempty"`
}

// EventTime is one endpoint of an event: either an instant or a date-only
// value (all-day events). A zero At means the endpoint could not be resolved.
type EventTime struct {
	At       time.Time `json:"at"`
	DateOnly bool      `json:"dateOnly,omitempty"`
}

// IsZero reports whether the endpoint is unresolved.
func (t EventTime) IsZero() bool {
	return t.At.IsZero()
}

// CalendarEvent is a single occurrence fetched from a remote calendar.
// Events are immutable value snapshots; they live exactly as long as the
// cache entry that owns them.
type CalendarEvent struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Location         string      `json:"location,omitempty"`
	Start            EventTime   `json:"start"`
	End              EventTime   `json:"end"`
	CalendarID       string      `json:"calendarId"`
	Account          AccountKind `json:"account"`
	RecurringEventID string      `json:"recurringEventId,omitempty"`
	Recurrence       []string    `json:"recurrence,omitempty"`
}

// AllDay reports whether the event is expressed as a date range rather than
// an instant range.
func (e CalendarEvent) AllDay() bool {
	return e.Start.DateOnly
}

// LikelyRecurring is a heuristic: true when the event carries recurrence
// linkage fields. It is not a recurrence-rule evaluator.
func (e CalendarEvent) LikelyRecurring() bool {
	return e.RecurringEventID != "" || len(e.Recurrence) > 0
}

// SortEvents orders events ascending by start time. Events without a
// resolvable start sort last. Equal starts (and no-start events) tie-break
// by ID so the order is deterministic across loads.
func SortEvents(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		switch {
		case a.Start.IsZero() != b.Start.IsZero():
			return !a.Start.IsZero()
		case !a.Start.IsZero() && !a.Start.At.Equal(b.Start.At):
			return a.Start.At.Before(b.Start.At)
		default:
			return a.ID < b.ID
		}
	})
}

// SameDay reports whether two instants fall on the same calendar day, using
// the first argument's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates an instant to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
