package connector

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

const calendarPageSize = 250

// CalendarConnector fetches events from the user's primary Google calendar.
type CalendarConnector struct{}

func NewCalendarConnector() *CalendarConnector {
	return &CalendarConnector{}
}

func (c *CalendarConnector) SourceType() sourcedomain.SourceType {
	return sourcedomain.SourceCalendar
}

func (c *CalendarConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error) {
	if sel.ContentFilter != "" {
		return nil, syncdomain.ErrUnsupportedSelector
	}

	token := &oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}
	srv, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	if len(sel.IDs) > 0 {
		return c.fetchByIDs(ctx, srv, sel.IDs)
	}

	var items []syncdomain.RawItem
	pageToken := ""
	for {
		call := srv.Events.List("primary").
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(calendarPageSize).
			Context(ctx)
		if sel.Window != nil {
			if !sel.Window.Since.IsZero() {
				call = call.TimeMin(sel.Window.Since.Format(time.RFC3339))
			}
			if !sel.Window.Until.IsZero() {
				call = call.TimeMax(sel.Window.Until.Format(time.RFC3339))
			}
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, classifyGoogleError(err)
		}
		for _, ev := range resp.Items {
			item, err := convertEvent(ev)
			if err != nil {
				log.Printf("[CalendarConnector] Skipping event: %v", err)
				continue
			}
			items = append(items, item)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return items, nil
}

func (c *CalendarConnector) fetchByIDs(ctx context.Context, srv *calendar.Service, ids []string) ([]syncdomain.RawItem, error) {
	items := make([]syncdomain.RawItem, 0, len(ids))
	for _, id := range ids {
		ev, err := srv.Events.Get("primary", id).Context(ctx).Do()
		if err != nil {
			classified := classifyGoogleError(err)
			if classified == sourcedomain.ErrCredentialExpired || syncdomain.IsTransient(classified) {
				return nil, classified
			}
			log.Printf("[CalendarConnector] Skipping event %s: %v", id, err)
			continue
		}
		item, err := convertEvent(ev)
		if err != nil {
			log.Printf("[CalendarConnector] Skipping event %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func convertEvent(ev *calendar.Event) (*syncdomain.EventItem, error) {
	if ev.Id == "" {
		return nil, fmt.Errorf("event missing id")
	}
	start, err := eventStart(ev)
	if err != nil {
		return nil, fmt.Errorf("event %s has bad start time: %w", ev.Id, err)
	}
	attendees := make([]string, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		if a.Email != "" {
			attendees = append(attendees, a.Email)
		}
	}
	return &syncdomain.EventItem{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       start,
		Attendees:   attendees,
	}, nil
}

func eventStart(ev *calendar.Event) (time.Time, error) {
	if ev.Start == nil {
		return time.Time{}, fmt.Errorf("no start")
	}
	if ev.Start.DateTime != "" {
		return time.Parse(time.RFC3339, ev.Start.DateTime)
	}
	// All-day events carry a date only.
	return time.Parse("2006-01-02", ev.Start.Date)
}
