package ingest

import (
	"unicode/utf8"

	"github.com/kailas-cloud/concierge/internal/domain/listing"
)

// MatchKind names the rule that linked an event to its venue.
type MatchKind string

// Match kinds in the order they are tried.
const (
	LocationToName     MatchKind = "location_to_name"
	LocationToLocation MatchKind = "location_to_location"
	NameToName         MatchKind = "name_to_name"
)

const (
	locationThreshold = 80
	nameThreshold     = 85
	minNameLen        = 3
)

// VenueMatch links one event to a business by index. Business is -1 when unlinked.
type VenueMatch struct {
	Business int
	Kind     MatchKind
	Score    int
}

// Linked reports whether the event has a venue.
func (m VenueMatch) Linked() bool { return m.Business >= 0 }

// LinkVenues finds the best business for every event. Match kinds are tried
// in declaration order; a later kind runs only when the earlier ones found
// nothing. Events without a location stay unlinked.
func LinkVenues(events []listing.Event, businesses []listing.Business) []VenueMatch {
	names := make([]string, len(businesses))
	locations := make([]string, len(businesses))
	for i := range businesses {
		names[i] = matchKey(businesses[i].Name)
		locations[i] = matchKey(businesses[i].Location)
	}

	out := make([]VenueMatch, len(events))
	for i := range events {
		out[i] = linkEvent(&events[i], names, locations)
	}
	return out
}

func linkEvent(e *listing.Event, names, locations []string) VenueMatch {
	none := VenueMatch{Business: -1}
	if e.Location == "" {
		return none
	}
	loc := matchKey(e.Location)

	if m := bestMatch(loc, names, locationThreshold, LocationToName, true); m.Linked() {
		return m
	}
	if m := bestMatch(loc, locations, locationThreshold, LocationToLocation, false); m.Linked() {
		return m
	}
	return bestMatch(matchKey(e.Name), names, nameThreshold, NameToName, true)
}

// bestMatch returns the first highest-scoring candidate above threshold.
func bestMatch(needle string, candidates []string, threshold int, kind MatchKind, skipShort bool) VenueMatch {
	best := VenueMatch{Business: -1}
	for j, c := range candidates {
		if c == "" || (skipShort && utf8.RuneCountInString(c) <= minNameLen) {
			continue
		}
		score := PartialRatio(needle, c)
		if score > threshold && score > best.Score {
			best = VenueMatch{Business: j, Kind: kind, Score: score}
		}
	}
	return best
}

// eventsByVenue inverts matches into business index -> event indexes.
func eventsByVenue(matches []VenueMatch) map[int][]int {
	out := make(map[int][]int)
	for i, m := range matches {
		if m.Linked() {
			out[m.Business] = append(out[m.Business], i)
		}
	}
	return out
}
