// Package stats computes the dashboard overview from fetched events and
// tickets. The backend owns the demographic aggregation; everything here is
// display math over in-memory lists.
package stats

import (
	"fmt"
	"sort"
	"time"

	"ticketdesk/internal/model"
)

const (
	topListLimit      = 5
	recentTicketLimit = 5
	upcomingListLimit = 3
)

type Overview struct {
	TotalEvents      int            `json:"total_events"`
	UpcomingEvents   int            `json:"upcoming_events"`
	PastEvents       int            `json:"past_events"`
	TotalTickets     int            `json:"total_tickets"`
	ValidatedTickets int            `json:"validated_tickets"`
	PendingTickets   int            `json:"pending_tickets"`
	ValidationRate   string         `json:"validation_rate"`
	TotalRevenue     float64        `json:"total_revenue"`
	RecentTickets    []model.Ticket `json:"recent_tickets"`
	UpcomingList     []model.Event  `json:"upcoming_events_list"`
}

// Build aggregates the overview numbers as of now.
func Build(events []model.Event, tickets []model.Ticket, now time.Time) Overview {
	o := Overview{
		TotalEvents:  len(events),
		TotalTickets: len(tickets),
	}

	for _, t := range tickets {
		o.TotalRevenue += t.AmountPaid
		if t.Validated() {
			o.ValidatedTickets++
		}
	}
	o.PendingTickets = o.TotalTickets - o.ValidatedTickets
	if o.TotalTickets > 0 {
		o.ValidationRate = fmt.Sprintf("%.1f", float64(o.ValidatedTickets)/float64(o.TotalTickets)*100)
	} else {
		o.ValidationRate = "0"
	}

	var upcoming []model.Event
	for _, ev := range events {
		if ev.Date.After(now) {
			upcoming = append(upcoming, ev)
		}
	}
	o.UpcomingEvents = len(upcoming)
	o.PastEvents = o.TotalEvents - o.UpcomingEvents

	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	if len(upcoming) > upcomingListLimit {
		upcoming = upcoming[:upcomingListLimit]
	}
	o.UpcomingList = upcoming

	recent := make([]model.Ticket, len(tickets))
	copy(recent, tickets)
	sort.Slice(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentTicketLimit {
		recent = recent[:recentTicketLimit]
	}
	o.RecentTickets = recent

	return o
}

// EventTitle picks the display title: French first, then English, then the
// first available translation, falling back to the raw id.
func EventTitle(ev model.Event) string {
	for _, locale := range []string{"fr", "en"} {
		for _, t := range ev.Translations {
			if t.Locale == locale && t.Title != "" {
				return t.Title
			}
		}
	}
	if len(ev.Translations) > 0 && ev.Translations[0].Title != "" {
		return ev.Translations[0].Title
	}
	return ev.ID
}

// TopFive trims each pre-sorted statistics list to the five entries the
// dashboard shows.
func TopFive(s model.Statistics) model.Statistics {
	if len(s.Languages) > topListLimit {
		s.Languages = s.Languages[:topListLimit]
	}
	if len(s.Schools) > topListLimit {
		s.Schools = s.Schools[:topListLimit]
	}
	if len(s.Professions) > topListLimit {
		s.Professions = s.Professions[:topListLimit]
	}
	return s
}
