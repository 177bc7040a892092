package events

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Catalog is a read-only list of events keyed by their externally supplied ids.
type Catalog struct {
	events []Event
	byID   map[string]int
}

func NewCatalog(events []Event) *Catalog {
	c := &Catalog{
		events: make([]Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	for _, e := range events {
		if _, dup := c.byID[e.ID]; dup || e.ID == "" {
			continue
		}
		c.byID[e.ID] = len(c.events)
		c.events = append(c.events, e)
	}
	return c
}

func (c *Catalog) List() []Event {
	return append([]Event(nil), c.events...)
}

func (c *Catalog) Get(id string) (Event, error) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Event{}, ErrNotFound
	}
	return c.events[i], nil
}

// SeedEvents is the built-in schedule shown before the backend supplies one.
func SeedEvents() []Event {
	return []Event{
		{
			ID:          "1",
			Title:       "Sunday Worship Service",
			Description: "Join us for a time of worship, prayer and teaching from the Word.",
			Date:        "Every Sunday",
			Time:        "10:00 AM",
			Location:    "Main Sanctuary",
			ImageURL:    "https://images.unsplash.com/photo-1438232992991-995b7058bbb3",
		},
		{
			ID:          "2",
			Title:       "Midweek Bible Study",
			Description: "An in-depth study through the book of Romans with small group discussion.",
			Date:        "Every Wednesday",
			Time:        "7:00 PM",
			Location:    "Fellowship Hall",
			ImageURL:    "https://images.unsplash.com/photo-1504052434569-70ad5836ab65",
		},
		{
			ID:          "3",
			Title:       "Youth Night",
			Description: "Games, worship and a message for students in grades 6 through 12.",
			Date:        "Every Friday",
			Time:        "6:30 PM",
			Location:    "Youth Center",
		},
		{
			ID:          "4",
			Title:       "Community Outreach",
			Description: "Serving meals and sharing care packages with neighbors downtown.",
			Date:        "First Saturday of the month",
			Time:        "9:00 AM",
			Location:    "Downtown Park",
			ImageURL:    "https://images.unsplash.com/photo-1488521787991-ed7bbaae773c",
		},
		{
			ID:          "5",
			Title:       "Prayer Breakfast",
			Description: "Start the month with breakfast and prayer for our church and city.",
			Date:        "First Sunday of the month",
			Time:        "8:00 AM",
			Location:    "Fellowship Hall",
		},
	}
}
