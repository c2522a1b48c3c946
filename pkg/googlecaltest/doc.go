// Package googlecaltest provides a mock Google Calendar API server for
// testing.
//
// The mock server implements the read-side subset of the Google Calendar
// API v3 that the daybook engine uses, allowing tests to run without
// authentication or network access.
//
// # Supported Operations
//
//   - List Calendars: GET /users/me/calendarList
//   - List Events: GET /calendars/{calendarId}/events (time filters, sorting)
//
// # Basic Usage
//
//	// Create mock server
//	server := googlecaltest.NewServer()
//	defer server.Close()
//
//	// Create Google Calendar client pointing to mock
//	ctx := context.Background()
//	client := &http.Client{}
//	svc, err := calendar.NewService(ctx,
//	    option.WithHTTPClient(client),
//	    option.WithEndpoint(server.URL))
//
//	// Pre-populate a calendar and an event
//	server.AddCalendar(&calendar.CalendarListEntry{Id: "primary", Primary: true})
//	server.AddEvent("primary", &calendar.Event{
//	    Summary: "Team Meeting",
//	    Start:   &calendar.EventDateTime{DateTime: time.Now().Format(time.RFC3339)},
//	})
//
//	// Use the service normally
//	events, err := svc.Events.List("primary").Do()
//
// # Test Helpers
//
//	server.RequireToken("secret")     // reject requests without the bearer token
//	server.FailEvents("primary", 503) // inject a per-calendar failure
//	server.FailCalendarList(500)      // inject a calendar-list failure
//	n := server.Requests()            // count received API requests
//	server.Reset()                    // clear all data between tests
//
// # Features
//
//   - Thread-safe: uses a mutex for concurrent access
//   - Time filtering: supports timeMin and timeMax query parameters
//   - Sorting: supports orderBy=startTime with singleEvents=true
//   - Multiple calendars: each calendar ID maintains separate event storage
//   - Fault injection: per-calendar and list-level HTTP error responses
//   - Request counting: verifies cache hits issue no network calls
package googlecaltest
