package ingest

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/concierge/internal/domain/listing"
)

var (
	htmlTag = regexp.MustCompile(`<[^>]+>`)

	// Replaced in order: "&amp;lt;" ends up as "<".
	htmlEntities = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&nbsp;", " "},
	}
)

// CleanHTML decodes the common HTML entities and strips tags.
func CleanHTML(s string) string {
	for _, e := range htmlEntities {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

// cleanBusiness normalizes a row; ok is false when the row has nothing to index.
func cleanBusiness(b listing.Business) (listing.Business, bool) {
	if listing.IsBlank(b.Description) || listing.IsBlank(b.Name) {
		return b, false
	}
	b.Name = CleanHTML(b.Name)
	b.Location = CleanHTML(listing.Optional(b.Location))
	b.Description = CleanHTML(b.Description)
	b.URL = listing.Optional(b.URL)
	b.Website = listing.Optional(b.Website)
	b.ImageURL = listing.Optional(b.ImageURL)
	b.Phone = listing.Optional(b.Phone)
	b.Email = listing.Optional(b.Email)
	return b, b.Description != "" && b.Name != ""
}

func cleanEvent(e listing.Event) (listing.Event, bool) {
	if listing.IsBlank(e.Description) || listing.IsBlank(e.Name) {
		return e, false
	}
	e.Name = CleanHTML(e.Name)
	e.Date = listing.Optional(e.Date)
	e.Time = listing.Optional(e.Time)
	e.Location = CleanHTML(listing.Optional(e.Location))
	e.Description = CleanHTML(e.Description)
	e.URL = listing.Optional(e.URL)
	e.ImageURL = listing.Optional(e.ImageURL)
	e.Source = listing.Optional(e.Source)
	return e, e.Description != "" && e.Name != ""
}
