package planner

import (
	"testing"
	"time"
)

func TestMonthOf(t *testing.T) {
	tests := []struct {
		name      string
		input     time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			input:     time.Date(2026, 8, 17, 13, 45, 0, 0, time.UTC),
			wantStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december wraps the year",
			input:     time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthOf(tt.input)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("expected start %v, got %v", tt.wantStart, got.Start)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("expected end %v, got %v", tt.wantEnd, got.End)
			}
		})
	}
}

func TestAddMonthsYieldsAdjacentMonths(t *testing.T) {
	aug := MonthOf(time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC))

	prev := aug.AddMonths(-1)
	if prev.Start.Month() != time.July || !prev.End.Equal(aug.Start) {
		t.Errorf("expected july range adjacent to august, got %v", prev)
	}

	next := aug.AddMonths(1)
	if next.Start.Month() != time.September || !next.Start.Equal(aug.End) {
		t.Errorf("expected september range adjacent to august, got %v", next)
	}
}

func TestCacheKey(t *testing.T) {
	r := MonthOf(time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC))

	key := CacheKey(AccountPersonal, r)
	want := "events/personal/2026-08-01/2026-09-01"
	if key != want {
		t.Errorf("expected %q, got %q", want, key)
	}

	// Same inputs always produce the same key; different accounts never share.
	if again := CacheKey(AccountPersonal, r); again != key {
		t.Errorf("expected deterministic key, got %q then %q", key, again)
	}
	if other := CacheKey(AccountProfessional, r); other == key {
		t.Errorf("expected distinct keys per account, both were %q", key)
	}

	// Clock time within the same day does not change the key.
	later := DateRange{Start: r.Start.Add(5 * time.Hour), End: r.End.Add(5 * time.Hour)}
	if CacheKey(AccountPersonal, later) != key {
		t.Errorf("expected date-level key, got %q", CacheKey(AccountPersonal, later))
	}
}
