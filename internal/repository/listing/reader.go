package listing

import (
	"fmt"

	"github.com/kailas-cloud/concierge/internal/domain/listing"
)

// Column names of the business export.
var businessColumns = struct {
	Name, Location, Description, URL, Website, ImageURL, Phone, Email string
}{"Name", "Location", "Description", "URL", "Website", "Image_URL", "Phone", "Email"}

// Column names of the event export.
var eventColumns = struct {
	Name, Date, Time, Location, Description, URL, ImageURL, Source string
}{"Name", "Date", "Time", "Location", "Description", "URL", "Image_URL", "Source"}

// ReadBusinesses loads business rows. Row ids follow file order.
func ReadBusinesses(path string) ([]listing.Business, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("read businesses %s: %w", path, err)
	}
	c := businessColumns
	if err := t.require(c.Name, c.Description); err != nil {
		return nil, fmt.Errorf("read businesses %s: %w", path, err)
	}

	out := make([]listing.Business, 0, len(t.rows))
	for i, row := range t.rows {
		out = append(out, listing.Business{
			ID:          listing.BusinessID(i),
			Name:        t.cell(row, c.Name),
			Location:    t.cell(row, c.Location),
			Description: t.cell(row, c.Description),
			URL:         t.cell(row, c.URL),
			Website:     t.cell(row, c.Website),
			ImageURL:    t.cell(row, c.ImageURL),
			Phone:       t.cell(row, c.Phone),
			Email:       t.cell(row, c.Email),
		})
	}
	return out, nil
}

// ReadEvents loads event rows. Row ids follow file order.
func ReadEvents(path string) ([]listing.Event, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("read events %s: %w", path, err)
	}
	c := eventColumns
	if err := t.require(c.Name, c.Description); err != nil {
		return nil, fmt.Errorf("read events %s: %w", path, err)
	}

	out := make([]listing.Event, 0, len(t.rows))
	for i, row := range t.rows {
		out = append(out, listing.Event{
			ID:          listing.EventID(i),
			Name:        t.cell(row, c.Name),
			Date:        t.cell(row, c.Date),
			Time:        t.cell(row, c.Time),
			Location:    t.cell(row, c.Location),
			Description: t.cell(row, c.Description),
			URL:         t.cell(row, c.URL),
			ImageURL:    t.cell(row, c.ImageURL),
			Source:      t.cell(row, c.Source),
		})
	}
	return out, nil
}
