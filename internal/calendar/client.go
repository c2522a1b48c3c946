// Package calendar implements the remote calendar client for one linked
// account, built on the Google Calendar API.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/drewfead/daybook/internal/planner"
)

// Client wraps the Google Calendar API service for one linked account.
type Client struct {
	service *calendar.Service
	account planner.AccountKind
}

// NewClient creates a calendar client for the given account. The HTTP client
// must already carry the account's credentials. Optionally accepts an
// endpoint URL for testing with mock servers.
func NewClient(ctx context.Context, account planner.AccountKind, httpClient *http.Client, endpoint ...string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}

	if len(endpoint) > 0 && endpoint[0] != "" {
		opts = append(opts, option.WithEndpoint(endpoint[0]))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	return &Client{
		service: srv,
		account: account,
	}, nil
}

// Account returns the linked account this client fetches for.
func (c *Client) Account() planner.AccountKind {
	return c.account
}

// Calendars lists the calendars visible to the account.
func (c *Client) Calendars(ctx context.Context) ([]planner.CalendarSource, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, c.classify(err)
	}

	sources := make([]planner.CalendarSource, 0, len(list.Items))
	for _, item := range list.Items {
		sources = append(sources, mapSource(item))
	}
	return sources, nil
}

// Events fetches all events in the range across the account's calendars.
// The result is sorted ascending by start time; events without a resolvable
// start sort last, tie-broken by ID.
func (c *Client) Events(ctx context.Context, r planner.DateRange) ([]planner.CalendarEvent, error) {
	_, events, err := c.FetchRange(ctx, r)
	return events, err
}

// FetchRange fetches the calendar list and the events in the range with a
// single calendar-list call. For every calendar one events request is issued
// with the range bounds, single-occurrence expansion, and start-time
// ordering; each event is stamped with its source calendar and the account.
//
// Only the first page per calendar is read. Calendars with more events than
// one page may silently truncate.
func (c *Client) FetchRange(ctx context.Context, r planner.DateRange) ([]planner.CalendarSource, []planner.CalendarEvent, error) {
	sources, err := c.Calendars(ctx)
	if err != nil {
		return nil, nil, err
	}

	var events []planner.CalendarEvent
	for _, src := range sources {
		list, err := c.service.Events.List(src.ID).
			Context(ctx).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(r.Start.Format(time.RFC3339)).
			TimeMax(r.End.Format(time.RFC3339)).
			Do()
		if err != nil {
			return nil, nil, c.classify(err)
		}

		for _, item := range list.Items {
			events = append(events, mapEvent(c.account, src.ID, item))
		}
	}

	planner.SortEvents(events)
	slog.Debug("fetched events", "account", c.account, "range", r, "calendars", len(sources), "events", len(events))
	return sources, events, nil
}

// classify maps transport and service failures onto the engine's error
// taxonomy.
func (c *Client) classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &planner.AuthError{Account: c.account, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &planner.AuthError{Account: c.account, Err: err}
		default:
			return &planner.APIError{StatusCode: apiErr.Code, Err: err}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &planner.NetworkError{Err: err}
	}

	return fmt.Errorf("unable to query calendar service: %w", err)
}
