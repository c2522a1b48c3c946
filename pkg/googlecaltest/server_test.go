package googlecaltest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func newTestService(t *testing.T, server *Server) *calendar.Service {
	t.Helper()

	ctx := context.Background()
	client := &http.Client{}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("failed to create calendar service: %v", err)
	}
	return svc
}

func TestMockServer_ListCalendars(t *testing.T) {
	server := NewServer()
	defer server.Close()

	server.AddCalendar(&calendar.CalendarListEntry{Id: "primary", Summary: "Primary", Primary: true})
	server.AddCalendar(&calendar.CalendarListEntry{Id: "team", Summary: "Team"})

	svc := newTestService(t, server)

	list, err := svc.CalendarList.List().Do()
	if err != nil {
		t.Fatalf("failed to list calendars: %v", err)
	}

	if len(list.Items) != 2 {
		t.Fatalf("expected 2 calendars, got %d", len(list.Items))
	}
	if list.Items[0].Id != "primary" || !list.Items[0].Primary {
		t.Errorf("expected primary calendar first, got %+v", list.Items[0])
	}
}

func TestMockServer_ListEvents(t *testing.T) {
	server := NewServer()
	defer server.Close()

	baseTime := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		server.AddEvent("primary", &calendar.Event{
			Summary: "Event " + string(rune('A'+i)),
			Start: &calendar.EventDateTime{
				DateTime: baseTime.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			},
			End: &calendar.EventDateTime{
				DateTime: baseTime.Add(time.Duration(i+1) * time.Hour).Format(time.RFC3339),
			},
		})
	}

	svc := newTestService(t, server)

	events, err := svc.Events.List("primary").Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}

	if len(events.Items) != 5 {
		t.Errorf("expected 5 events, got %d", len(events.Items))
	}
}

func TestMockServer_TimeFilters(t *testing.T) {
	server := NewServer()
	defer server.Close()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for day := 1; day <= 20; day += 5 {
		server.AddEvent("primary", &calendar.Event{
			Summary: "Event",
			Start: &calendar.EventDateTime{
				DateTime: base.AddDate(0, 0, day).Format(time.RFC3339),
			},
		})
	}

	svc := newTestService(t, server)

	events, err := svc.Events.List("primary").
		TimeMin(base.AddDate(0, 0, 5).Format(time.RFC3339)).
		TimeMax(base.AddDate(0, 0, 15).Format(time.RFC3339)).
		Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}

	if len(events.Items) != 2 {
		t.Errorf("expected 2 events in window, got %d", len(events.Items))
	}
}

func TestMockServer_OrderByStartTime(t *testing.T) {
	server := NewServer()
	defer server.Close()

	base := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	server.AddEvent("primary", &calendar.Event{
		Id:      "later",
		Summary: "Later",
		Start:   &calendar.EventDateTime{DateTime: base.Add(2 * time.Hour).Format(time.RFC3339)},
	})
	server.AddEvent("primary", &calendar.Event{
		Id:      "earlier",
		Summary: "Earlier",
		Start:   &calendar.EventDateTime{DateTime: base.Format(time.RFC3339)},
	})

	svc := newTestService(t, server)

	events, err := svc.Events.List("primary").SingleEvents(true).OrderBy("startTime").Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}

	if len(events.Items) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events.Items))
	}
	if events.Items[0].Id != "earlier" {
		t.Errorf("expected 'earlier' first, got %q", events.Items[0].Id)
	}
}

func TestMockServer_RequireToken(t *testing.T) {
	server := NewServer()
	defer server.Close()
	server.RequireToken("secret")

	svc := newTestService(t, server)

	_, err := svc.CalendarList.List().Do()
	if err == nil {
		t.Fatal("expected error without bearer token")
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMockServer_FailEvents(t *testing.T) {
	server := NewServer()
	defer server.Close()
	server.AddCalendar(&calendar.CalendarListEntry{Id: "primary"})
	server.FailEvents("primary", http.StatusServiceUnavailable)

	svc := newTestService(t, server)

	_, err := svc.Events.List("primary").Do()
	if err == nil {
		t.Fatal("expected injected failure")
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}

	server.FailEvents("primary", 0)
	if _, err := svc.Events.List("primary").Do(); err != nil {
		t.Errorf("expected recovery after clearing failure, got %v", err)
	}
}

func TestMockServer_RequestsAndReset(t *testing.T) {
	server := NewServer()
	defer server.Close()
	server.AddCalendar(&calendar.CalendarListEntry{Id: "primary"})

	svc := newTestService(t, server)

	if _, err := svc.CalendarList.List().Do(); err != nil {
		t.Fatalf("failed to list calendars: %v", err)
	}
	if _, err := svc.Events.List("primary").Do(); err != nil {
		t.Fatalf("failed to list events: %v", err)
	}

	if got := server.Requests(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}

	server.Reset()

	if got := server.Requests(); got != 0 {
		t.Errorf("expected counter reset, got %d", got)
	}
	list, err := svc.CalendarList.List().Do()
	if err != nil {
		t.Fatalf("failed to list calendars after reset: %v", err)
	}
	if len(list.Items) != 0 {
		t.Errorf("expected 0 calendars after reset, got %d", len(list.Items))
	}
}
