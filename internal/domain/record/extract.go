package record

import "strings"

// Section markers of the page content written by the indexer.
const (
	MarkerDescription    = "Description: "
	MarkerUpcomingEvents = "Upcoming Events:"
	MarkerVenue          = "Venue:"
)

// ExtractSection returns the text between the first startMarker and the next
// endMarker (or the end of text). Returns "" when startMarker is absent.
// An empty endMarker means "until the end".
func ExtractSection(text, startMarker, endMarker string) string {
	_, rest, found := strings.Cut(text, startMarker)
	if !found {
		return ""
	}
	if endMarker == "" {
		return rest
	}
	section, _, _ := strings.Cut(rest, endMarker)
	return section
}

// ExtractListItems returns the "- " prefixed lines that follow marker, prefix removed.
func ExtractListItems(text, marker string) []string {
	_, rest, found := strings.Cut(text, marker)
	if !found {
		return nil
	}

	var items []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(line, "- "); ok {
			items = append(items, item)
		}
	}
	return items
}

// ExtractLine returns the first line after marker, trimmed. Returns "" when marker is absent.
func ExtractLine(text, marker string) string {
	_, rest, found := strings.Cut(text, marker)
	if !found {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line)
}
