package concierge

import "time"

// EntityType restricts the kind of results returned by Ask.
type EntityType string

// Entity types.
const (
	TypeAll      EntityType = "all"
	TypeBusiness EntityType = "business"
	TypeEvent    EntityType = "event"
)

// Mode selects the collection layout written by Build.
type Mode string

// Build modes.
const (
	ModeCombined Mode = "combined"
	ModeSplit    Mode = "split"
)

// Business is one business listing. "N/A" values are treated as empty.
type Business struct {
	Name        string
	Location    string
	Description string
	URL         string
	Website     string
	ImageURL    string
	Phone       string
	Email       string
}

// Event is one event listing. "N/A" values are treated as empty.
type Event struct {
	Name        string
	Date        string
	Time        string
	Location    string
	Description string
	URL         string
	ImageURL    string
	Source      string
}

// BuildInput is one indexing run.
type BuildInput struct {
	Businesses []Business
	Events     []Event
	Mode       Mode // default: ModeCombined
}

// BuildResult reports what Build wrote.
type BuildResult struct {
	Businesses        int
	Events            int
	SkippedBusinesses int
	SkippedEvents     int
	LinkedEvents      int
	Collections       map[string]int // collection -> documents written
	Tokens            int
	Duration          time.Duration
}

// Result is one ranked business or event card.
type Result struct {
	Type        EntityType
	Name        string
	Location    string
	Description string
	URL         string
	ImageURL    string
	Score       string

	Website        string
	Phone          string
	Email          string
	HasEvents      bool
	EventCount     int
	UpcomingEvents []string

	Date         string
	Time         string
	Source       string
	HasVenueInfo bool
	VenueInfo    string
	BusinessID   string
}

// Answer is the outcome of Ask.
type Answer struct {
	Query   string
	Answer  string
	Results []Result
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status    string            // "ok", "degraded", "error"
	Checks    map[string]string // component -> "ok"/"error"/"empty"
	Documents map[string]int    // collection -> indexed documents
}
