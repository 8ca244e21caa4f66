package db

import "github.com/kailas-cloud/concierge/internal/domain/search/filter"

// KNNQuery asks for the K nearest hashes to Vector, optionally pre-filtered by tags.
type KNNQuery struct {
	Index  string
	Filter filter.Expression
	Vector []float32
	K      int
	Fields []string // empty returns every hash field except the vector
}

// SearchResult holds the hits of one query, nearest first.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is cosine similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
