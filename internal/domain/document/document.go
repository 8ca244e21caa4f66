package document

import (
	"sort"
	"strconv"

	"github.com/kailas-cloud/concierge/internal/domain/entity"
)

// Metadata keys written by the indexer and read by the pipeline.
const (
	KeyName         = "name"
	KeyType         = "type"
	KeyLocation     = "location"
	KeyURL          = "url"
	KeyWebsite      = "website"
	KeyImageURL     = "image_url"
	KeyPhone        = "phone"
	KeyEmail        = "email"
	KeyHasEvents    = "has_events"
	KeyEventCount   = "event_count"
	KeyDate         = "date"
	KeyTime         = "time"
	KeySource       = "source"
	KeyHasVenueInfo = "has_venue_info"
	KeyBusinessID   = "business_id"
)

// Document is an indexed business or event: structured text plus flat metadata.
type Document struct {
	id       string
	content  string
	metadata map[string]string
}

// New creates a document. The metadata map is owned by the document afterwards.
func New(id, content string, metadata map[string]string) Document {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Document{id: id, content: content, metadata: metadata}
}

// ID returns the document key inside its collection.
func (d Document) ID() string { return d.id }

// Content returns the page content.
func (d Document) Content() string { return d.content }

// Metadata returns the raw metadata map. Callers must not mutate it.
func (d Document) Metadata() map[string]string { return d.metadata }

// Get returns a metadata value and whether it was present.
func (d Document) Get(key string) (string, bool) {
	v, ok := d.metadata[key]
	return v, ok
}

// Value returns a metadata value or "".
func (d Document) Value(key string) string { return d.metadata[key] }

// Bool parses a boolean metadata value; missing or unparsable values are false.
func (d Document) Bool(key string) bool {
	b, err := strconv.ParseBool(d.metadata[key])
	return err == nil && b
}

// Int parses an integer metadata value; missing or unparsable values are 0.
func (d Document) Int(key string) int {
	n, err := strconv.Atoi(d.metadata[key])
	if err != nil {
		return 0
	}
	return n
}

// Type returns the record kind (business when the key is absent).
func (d Document) Type() entity.Type { return entity.OfMetadata(d.metadata[KeyType]) }

// HasEvents reports whether a business document advertises upcoming events.
func (d Document) HasEvents() bool { return d.Bool(KeyHasEvents) }

// Match is a document paired with its relevance score.
type Match struct {
	Document Document
	Score    float64
}

// SortByScore orders matches by descending score in place.
func SortByScore(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

// Embedded is a document paired with its embedding, ready to be written.
type Embedded struct {
	Document Document
	Vector   []float32
}
