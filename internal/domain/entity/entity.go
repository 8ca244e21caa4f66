package entity

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/concierge/internal/domain"
)

// Type is the kind of record a request targets.
type Type string

// Entity type constants.
const (
	All      Type = "all"
	Business Type = "business"
	Event    Type = "event"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == All || t == Business || t == Event
}

// Parse converts request input to a Type. Empty input means All.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return All, nil
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, s)
	}
	return t, nil
}

// OfMetadata returns the record kind stored in a document's "type" metadata.
// Documents without a recognised type are businesses.
func OfMetadata(v string) Type {
	if Type(v) == Event {
		return Event
	}
	return Business
}
