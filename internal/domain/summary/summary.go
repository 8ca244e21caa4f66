// Package summary turns a ranked record set into a one-sentence answer.
package summary

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/concierge/internal/domain/query"
	"github.com/kailas-cloud/concierge/internal/domain/record"
)

// NoResultsMessage is returned for an empty record set regardless of query.
const NoResultsMessage = "I couldn't find any relevant results for your query. Try asking about restaurants, bars, events, or attractions."

const dateLayout = "2006-01-02"

var (
	todayKeywords         = []string{"tonight", "today"}
	foodDrinkKeywords     = []string{"restaurant", "food", "eat", "dinner", "lunch", "breakfast", "brunch", "bar", "pub", "cocktail", "drink", "coffee", "cafe", "brewery"}
	entertainmentKeywords = []string{"music", "concert", "show", "performance", "festival", "exhibition", "gallery", "theater", "movie", "live", "entertainment"}
)

// Stats is the composition of a record set the rules reason about.
type Stats struct {
	Businesses      int
	Events          int
	VenuesWithEvent int
	TodayEvents     int
}

type rule struct {
	name   string
	match  func(q query.Query, s Stats) bool
	format func(q query.Query, s Stats) string
}

// Summarizer evaluates rules in order; the last matching rule determines the answer.
type Summarizer struct {
	now   func() time.Time
	rules []rule
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithClock overrides the clock used to decide which events happen today.
func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) { s.now = now }
}

// New creates a summarizer with the default rule set.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{now: time.Now, rules: defaultRules()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize builds the answer sentence for the records.
func (s *Summarizer) Summarize(q query.Query, records []record.Record) string {
	if len(records) == 0 {
		return NoResultsMessage
	}

	stats := s.stats(records)
	answer := fallback(stats)
	for _, r := range s.rules {
		if r.match(q, stats) {
			answer = r.format(q, stats)
		}
	}
	return answer
}

// Rule returns the name of the rule that produced the answer, or "" for the fallback.
func (s *Summarizer) Rule(q query.Query, records []record.Record) string {
	if len(records) == 0 {
		return ""
	}
	stats := s.stats(records)
	name := ""
	for _, r := range s.rules {
		if r.match(q, stats) {
			name = r.name
		}
	}
	return name
}

func (s *Summarizer) stats(records []record.Record) Stats {
	today := s.now().Format(dateLayout)

	var st Stats
	for i := range records {
		r := &records[i]
		switch {
		case r.IsEvent():
			st.Events++
			if r.Date == today {
				st.TodayEvents++
			}
		default:
			st.Businesses++
			if r.HasEvents {
				st.VenuesWithEvent++
			}
		}
	}
	return st
}

func fallback(s Stats) string {
	return fmt.Sprintf("I found %d businesses and %d events that match your query.", s.Businesses, s.Events)
}

func defaultRules() []rule {
	return []rule{
		{
			name: "today",
			match: func(q query.Query, _ Stats) bool {
				return q.ContainsAny(todayKeywords...)
			},
			format: formatToday,
		},
		{
			name: "food_drink",
			match: func(q query.Query, s Stats) bool {
				return s.Businesses > 0 && q.ContainsAny(foodDrinkKeywords...)
			},
			format: func(q query.Query, s Stats) string {
				answer := fmt.Sprintf("I found %d places to eat and drink that match your query.", s.Businesses)
				if q.HasTimeReference() && s.VenuesWithEvent > 0 {
					answer += fmt.Sprintf(" %d of them have upcoming events.", s.VenuesWithEvent)
				}
				return answer
			},
		},
		{
			name: "entertainment",
			match: func(q query.Query, s Stats) bool {
				return s.Events > 0 && q.ContainsAny(entertainmentKeywords...)
			},
			format: func(_ query.Query, s Stats) string {
				answer := fmt.Sprintf("I found %d entertainment events that match your query.", s.Events)
				if s.Businesses > 0 {
					answer += fmt.Sprintf(" I also found %d related venues.", s.Businesses)
				}
				return answer
			},
		},
	}
}

func formatToday(_ query.Query, s Stats) string {
	switch {
	case s.TodayEvents > 0 && s.VenuesWithEvent > 0:
		return fmt.Sprintf("I found %d events happening today and %d venues with events.", s.TodayEvents, s.VenuesWithEvent)
	case s.TodayEvents > 0:
		return fmt.Sprintf("I found %d events happening today.", s.TodayEvents)
	case s.VenuesWithEvent > 0:
		return fmt.Sprintf("I found %d venues with upcoming events.", s.VenuesWithEvent)
	default:
		return fmt.Sprintf("I didn't find anything scheduled for today, but here are %d events and %d businesses you might like.", s.Events, s.Businesses)
	}
}
