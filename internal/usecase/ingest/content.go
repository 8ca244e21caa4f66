package ingest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/listing"
	"github.com/kailas-cloud/concierge/internal/domain/record"
)

// MaxListedEvents caps the "Upcoming Events" lines written into a business page.
const MaxListedEvents = 5

// BusinessDocument renders a business page with its linked events.
func BusinessDocument(b listing.Business, events []listing.Event) document.Document {
	var sb strings.Builder
	sb.WriteString("Name: " + b.Name + "\n")
	sb.WriteString("Type: Business\n")
	sb.WriteString("Location: " + b.Location + "\n")
	sb.WriteString(record.MarkerDescription + b.Description)

	if len(events) > 0 {
		sb.WriteString("\n" + record.MarkerUpcomingEvents)
		for _, e := range upcoming(events) {
			sb.WriteString("\n- " + eventLine(e))
		}
	}

	return document.New(b.ID, sb.String(), map[string]string{
		document.KeyName:       b.Name,
		document.KeyType:       string(entity.Business),
		document.KeyLocation:   b.Location,
		document.KeyURL:        b.URL,
		document.KeyWebsite:    b.Website,
		document.KeyImageURL:   b.ImageURL,
		document.KeyPhone:      b.Phone,
		document.KeyEmail:      b.Email,
		document.KeyHasEvents:  strconv.FormatBool(len(events) > 0),
		document.KeyEventCount: strconv.Itoa(len(events)),
	})
}

// EventDocument renders an event page; venue is nil when the event is unlinked.
func EventDocument(e listing.Event, venue *listing.Business) document.Document {
	var sb strings.Builder
	sb.WriteString("Name: " + e.Name + "\n")
	sb.WriteString("Type: Event\n")
	if e.Date != "" {
		sb.WriteString("Date: " + e.Date + "\n")
	}
	if e.Time != "" {
		sb.WriteString("Time: " + e.Time + "\n")
	}
	if e.Location != "" {
		sb.WriteString("Location: " + e.Location + "\n")
	}
	sb.WriteString(record.MarkerDescription + e.Description)

	meta := map[string]string{
		document.KeyName:         e.Name,
		document.KeyType:         string(entity.Event),
		document.KeyDate:         e.Date,
		document.KeyTime:         e.Time,
		document.KeyLocation:     e.Location,
		document.KeyURL:          e.URL,
		document.KeyImageURL:     e.ImageURL,
		document.KeySource:       e.Source,
		document.KeyHasVenueInfo: strconv.FormatBool(venue != nil),
	}
	if venue != nil {
		sb.WriteString("\n" + record.MarkerVenue + " " + venue.Name)
		if venue.Location != "" {
			sb.WriteString(" (" + venue.Location + ")")
		}
		meta[document.KeyBusinessID] = venue.ID
	}

	return document.New(e.ID, sb.String(), meta)
}

// upcoming orders events by date then time and keeps the first MaxListedEvents.
// Undated events sort last.
func upcoming(events []listing.Event) []listing.Event {
	sorted := make([]listing.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.Date == "") != (b.Date == "") {
			return b.Date == ""
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
	if len(sorted) > MaxListedEvents {
		sorted = sorted[:MaxListedEvents]
	}
	return sorted
}

func eventLine(e listing.Event) string {
	line := e.Name
	if e.Date != "" {
		line += " on " + e.Date
	}
	if e.Time != "" {
		line += " at " + e.Time
	}
	return line
}
