package planner

import (
	"fmt"
	"time"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) DateRange {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// AddMonths shifts both endpoints by n calendar months. Shifting a month
// range yields the adjacent month range.
func (r DateRange) AddMonths(n int) DateRange {
	return DateRange{Start: r.Start.AddDate(0, n, 0), End: r.End.AddDate(0, n, 0)}
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// CacheKey derives the deterministic cache key for one account and range.
// Only the date components participate, so any two ranges covering the same
// days share an entry.
func CacheKey(kind AccountKind, r DateRange) string {
	return fmt.Sprintf("events/%s/%s/%s", kind, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
