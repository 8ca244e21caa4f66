package record

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
)

// Record is a response-ready business or event card.
// Fields that do not apply to the record's type are omitted from JSON;
// a business always carries has_events, event_count and upcoming_events.
type Record struct {
	Type        entity.Type `json:"type"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url"`
	Score       string      `json:"score"`

	// business
	Website        string   `json:"website,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Email          string   `json:"email,omitempty"`
	HasEvents      bool     `json:"has_events,omitempty"`
	EventCount     int      `json:"event_count,omitempty"`
	UpcomingEvents []string `json:"upcoming_events,omitempty"`

	// event
	Date         string `json:"date,omitempty"`
	Time         string `json:"time,omitempty"`
	Source       string `json:"source,omitempty"`
	HasVenueInfo bool   `json:"has_venue_info,omitempty"`
	VenueInfo    string `json:"venue_info,omitempty"`
	BusinessID   string `json:"business_id,omitempty"`
}

// MarshalJSON writes the event fields of a business even when they are zero.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	if r.Type != entity.Business {
		return json.Marshal(plain(r))
	}
	upcoming := r.UpcomingEvents
	if upcoming == nil {
		upcoming = []string{}
	}
	return json.Marshal(struct {
		plain
		HasEvents      bool     `json:"has_events"`
		EventCount     int      `json:"event_count"`
		UpcomingEvents []string `json:"upcoming_events"`
	}{plain(r), r.HasEvents, r.EventCount, upcoming})
}

// IsEvent reports whether the record is an event card.
func (r *Record) IsEvent() bool { return r.Type == entity.Event }

// IsBusiness reports whether the record is a business card.
func (r *Record) IsBusiness() bool { return r.Type == entity.Business }

// Normalize maps a match to a record. Missing section markers yield empty
// fields; a missing required metadata key yields ErrMalformedDocument.
func Normalize(m document.Match) (Record, error) {
	doc := m.Document
	if doc.Type() == entity.Event {
		return normalizeEvent(doc, m.Score)
	}
	return normalizeBusiness(doc, m.Score)
}

// NormalizeAll maps every match. The first malformed document fails the whole set.
func NormalizeAll(matches []document.Match) ([]Record, error) {
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		r, err := Normalize(m)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func normalizeBusiness(doc document.Document, score float64) (Record, error) {
	name, err := required(doc, document.KeyName)
	if err != nil {
		return Record{}, err
	}
	location, err := required(doc, document.KeyLocation)
	if err != nil {
		return Record{}, err
	}

	content := doc.Content()
	return Record{
		Type:           entity.Business,
		Name:           name,
		Location:       location,
		Description:    ExtractSection(content, MarkerDescription, "\n"+MarkerUpcomingEvents),
		URL:            doc.Value(document.KeyURL),
		ImageURL:       doc.Value(document.KeyImageURL),
		Score:          formatScore(score),
		Website:        doc.Value(document.KeyWebsite),
		Phone:          doc.Value(document.KeyPhone),
		Email:          doc.Value(document.KeyEmail),
		HasEvents:      doc.HasEvents(),
		EventCount:     doc.Int(document.KeyEventCount),
		UpcomingEvents: ExtractListItems(content, MarkerUpcomingEvents),
	}, nil
}

func normalizeEvent(doc document.Document, score float64) (Record, error) {
	name, err := required(doc, document.KeyName)
	if err != nil {
		return Record{}, err
	}

	content := doc.Content()
	return Record{
		Type:         entity.Event,
		Name:         name,
		Location:     doc.Value(document.KeyLocation),
		Description:  ExtractSection(content, MarkerDescription, "\n"+MarkerVenue),
		URL:          doc.Value(document.KeyURL),
		ImageURL:     doc.Value(document.KeyImageURL),
		Score:        formatScore(score),
		Date:         doc.Value(document.KeyDate),
		Time:         doc.Value(document.KeyTime),
		Source:       doc.Value(document.KeySource),
		HasVenueInfo: doc.Bool(document.KeyHasVenueInfo),
		VenueInfo:    ExtractLine(content, MarkerVenue),
		BusinessID:   doc.Value(document.KeyBusinessID),
	}, nil
}

func required(doc document.Document, key string) (string, error) {
	v, ok := doc.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: document %q has no %q", domain.ErrMalformedDocument, doc.ID(), key)
	}
	return v, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
