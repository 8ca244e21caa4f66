package ingest

import (
	"math"
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// matchKey drops punctuation and lowercases text before fuzzy comparison.
func matchKey(s string) string {
	return strings.ToLower(nonWord.ReplaceAllString(s, ""))
}

// PartialRatio scores in [0,100] how well the shorter string occurs inside
// the longer one, tolerating edits: 100 means an exact substring.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	d := substringDistance(short, long)
	return int(math.Round(100 * float64(len(short)-d) / float64(len(short))))
}

// substringDistance is the Levenshtein distance between pattern and the
// closest substring of text: leading and trailing text is free.
func substringDistance(pattern, text []rune) int {
	prev := make([]int, len(text)+1)
	curr := make([]int, len(text)+1)

	for i := 1; i <= len(pattern); i++ {
		curr[0] = i
		for j := 1; j <= len(text); j++ {
			cost := 0
			if pattern[i-1] != text[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	best := prev[0]
	for _, d := range prev[1:] {
		best = min(best, d)
	}
	return best
}
