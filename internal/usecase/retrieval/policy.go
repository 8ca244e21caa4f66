package retrieval

import "github.com/kailas-cloud/concierge/internal/domain/document"

// Fetch sizes and caps of the merge policy.
const (
	// MaxResults caps merged results on the all-types path.
	MaxResults = 7
	// TimeFetch is the per-type fetch size for time-referenced combined queries.
	TimeFetch = 5
	// VenueLimit is how many has-events businesses replace the business list.
	VenueLimit = 3
	// SplitFetch is the per-collection fetch size in split mode.
	SplitFetch = 5
	// FilteredK is the fetch size of type-filtered requests.
	FilteredK = 10
)

// preferVenues keeps the first VenueLimit businesses that have events, in
// store order. The list is returned unchanged when none have events.
func preferVenues(businesses []document.Match) []document.Match {
	var venues []document.Match
	for _, m := range businesses {
		if m.Document.HasEvents() {
			venues = append(venues, m)
			if len(venues) == VenueLimit {
				break
			}
		}
	}
	if len(venues) == 0 {
		return businesses
	}
	return venues
}

// merge concatenates the lists in order, sorts by descending score and keeps at most limit.
// Equal scores keep their concatenation order.
func merge(limit int, lists ...[]document.Match) []document.Match {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]document.Match, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	document.SortByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
