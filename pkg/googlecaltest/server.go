// Package googlecaltest provides a mock Google Calendar API server for
// testing. It implements the subset of the Calendar API v3 the daybook
// engine reads: the calendar list and per-calendar event listing.
package googlecaltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"google.golang.org/api/calendar/v3"
)

// Server is a mock Google Calendar API server for testing.
type Server struct {
	*httptest.Server
	mu         sync.RWMutex
	token      string
	calendars  []*calendar.CalendarListEntry
	events     map[string]map[string]*calendar.Event // calendarID -> eventID -> event
	failList   int
	failEvents map[string]int // calendarID -> status code
	requests   int
	nextID     int
}

// NewServer creates a new mock Google Calendar API server.
func NewServer() *Server {
	s := &Server{
		events:     make(map[string]map[string]*calendar.Event),
		failEvents: make(map[string]int),
		nextID:     1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// handleRequest routes all requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	token := s.token
	s.mu.Unlock()

	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
		s.listCalendars(w, r)
	case strings.Contains(r.URL.Path, "/calendars/") && strings.Contains(r.URL.Path, "/events"):
		s.routeEvents(w, r)
	default:
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
	}
}

// listCalendars handles GET /users/me/calendarList
func (s *Server) listCalendars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failList != 0 {
		http.Error(w, "injected calendar list failure", s.failList)
		return
	}

	resp := &calendar.CalendarList{
		Kind:  "calendar#calendarList",
		Items: append([]*calendar.CalendarListEntry(nil), s.calendars...),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// routeEvents handles /calendars/{calendarId}/events requests.
func (s *Server) routeEvents(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	idx := strings.Index(path, "/calendars/")
	if idx == -1 {
		http.Error(w, "invalid path: missing /calendars/", http.StatusBadRequest)
		return
	}

	path = path[idx+len("/calendars/"):]
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) != 2 || parts[1] != "events" {
		http.Error(w, fmt.Sprintf("unsupported resource %v", parts), http.StatusNotImplemented)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.listEvents(w, r, parts[0])
}

// listEvents handles GET /calendars/{calendarId}/events
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if code := s.failEvents[calendarID]; code != 0 {
		http.Error(w, "injected events failure", code)
		return
	}

	query := r.URL.Query()
	timeMin := query.Get("timeMin")
	timeMax := query.Get("timeMax")
	singleEvents := query.Get("singleEvents")
	orderBy := query.Get("orderBy")

	calEvents := s.events[calendarID]

	// Time filters compare RFC3339 strings; date-only events pass through.
	var events []*calendar.Event
	for _, evt := range calEvents {
		if timeMin != "" && evt.Start != nil && evt.Start.DateTime != "" {
			if evt.Start.DateTime < timeMin {
				continue
			}
		}
		if timeMax != "" && evt.Start != nil && evt.Start.DateTime != "" {
			if evt.Start.DateTime > timeMax {
				continue
			}
		}
		events = append(events, evt)
	}

	if orderBy == "startTime" && singleEvents == "true" {
		sort.Slice(events, func(i, j int) bool {
			iTime := ""
			jTime := ""
			if events[i].Start != nil {
				iTime = events[i].Start.DateTime
				if iTime == "" {
					iTime = events[i].Start.Date
				}
			}
			if events[j].Start != nil {
				jTime = events[j].Start.DateTime
				if jTime == "" {
					jTime = events[j].Start.Date
				}
			}
			return iTime < jTime
		})
	}

	resp := &calendar.Events{
		Kind:    "calendar#events",
		Summary: calendarID,
		Items:   events,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RequireToken makes the server reject requests that do not carry the given
// bearer token.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// AddCalendar registers a calendar in the account's calendar list.
func (s *Server) AddCalendar(entry *calendar.CalendarListEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars = append(s.calendars, entry)
}

// AddEvent adds a pre-configured event to the server (for test setup).
func (s *Server) AddEvent(calendarID string, event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Id == "" {
		event.Id = fmt.Sprintf("event%d", s.nextID)
		s.nextID++
	}

	if s.events[calendarID] == nil {
		s.events[calendarID] = make(map[string]*calendar.Event)
	}
	s.events[calendarID][event.Id] = event
}

// FailCalendarList makes the calendar list endpoint return the given status.
// Pass 0 to restore normal behavior.
func (s *Server) FailCalendarList(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = status
}

// FailEvents makes the events endpoint for one calendar return the given
// status. Pass 0 to restore normal behavior.
func (s *Server) FailEvents(calendarID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failEvents, calendarID)
		return
	}
	s.failEvents[calendarID] = status
}

// Requests returns the number of API requests the server has received,
// including rejected ones.
func (s *Server) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// Reset clears all calendars, events, fault injection, and counters.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.calendars = nil
	s.events = make(map[string]map[string]*calendar.Event)
	s.failList = 0
	s.failEvents = make(map[string]int)
	s.requests = 0
	s.nextID = 1
}
