package query

import (
	"regexp"
	"strings"
)

// timeKeywords are phrases that pin a query to a day or date window.
var timeKeywords = []string{
	"today", "tonight", "tomorrow", "this weekend", "weekend",
	"this week", "next week", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday", "sunday",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}`),
	regexp.MustCompile(`(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{1,2}`),
}

// ContainsTimeReference reports whether text names a specific day or date window.
func ContainsTimeReference(text string) bool {
	lower := strings.ToLower(text)

	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, p := range datePatterns {
		if p.MatchString(lower) {
			return true
		}
	}

	return false
}
