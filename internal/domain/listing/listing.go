// Package listing holds the raw business and event rows the indexer reads
// before they are cleaned, linked and turned into documents.
package listing

import (
	"strconv"
	"strings"
)

// NotAvailable is the placeholder the scraped sources use for missing values.
const NotAvailable = "N/A"

// Business is one row of the business source.
type Business struct {
	ID          string
	Name        string
	Location    string
	Description string
	URL         string
	Website     string
	ImageURL    string
	Phone       string
	Email       string
}

// Event is one row of the event source.
type Event struct {
	ID          string
	Name        string
	Date        string
	Time        string
	Location    string
	Description string
	URL         string
	ImageURL    string
	Source      string
}

// IsBlank reports whether a source value carries no information.
func IsBlank(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, NotAvailable)
}

// Optional returns v, or "" when the value is blank.
func Optional(v string) string {
	if IsBlank(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// BusinessID is the stable id of the i-th business row.
func BusinessID(i int) string { return "b-" + strconv.Itoa(i) }

// EventID is the stable id of the i-th event row.
func EventID(i int) string { return "e-" + strconv.Itoa(i) }
