package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/concierge/internal/db"
	"github.com/kailas-cloud/concierge/internal/domain/search/filter"
)

// VectorField is the hash field holding the FLOAT32 embedding.
const VectorField = "__vector"

const scoreField = "__vector_score"

// SearchKNN runs FT.SEARCH with a KNN clause (DIALECT 2).
// Cosine distances come back as similarities clamped to [0,1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	switch {
	case q.Index == "":
		return nil, errors.New("index name is required")
	case len(q.Vector) == 0:
		return nil, errors.New("query vector is required")
	case q.K <= 0:
		return nil, errors.New("k must be positive")
	}
	if err := q.Filter.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // validation message is self-describing
	}

	args := []string{q.Index, knnQuery(q.Filter, q.K)}
	if len(q.Fields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.Fields)))
		args = append(args, q.Fields...)
	}
	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", rueidis.BinaryString(db.EncodeVector(q.Vector)),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary(db.CmdSearch).Args(args...).Build()).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, db.Wrap(db.CmdSearch, q.Index, err)
	}
	return parseHits(raw)
}

// CountDocuments returns the number of hashes in the index.
func (s *Store) CountDocuments(ctx context.Context, index string) (int, error) {
	cmd := s.b().Arbitrary(db.CmdSearch).Args(index, "*", "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return 0, db.ErrIndexNotFound
		}
		return 0, db.Wrap(db.CmdSearch, index, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(n), nil
}

func knnQuery(expr filter.Expression, k int) string {
	knn := fmt.Sprintf("[KNN %d @%s $BLOB AS %s]", k, VectorField, scoreField)
	if pre := tagFilter(expr); pre != "" {
		return "(" + pre + ")=>" + knn
	}
	return "*=>" + knn
}

// parseHits reads the RESP2 reply [total, key1, [f, v, ...], key2, ...].
func parseHits(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	res := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		res.Entries = append(res.Entries, toEntry(key, pairs))
	}
	return res, nil
}

func toEntry(key string, pairs []rueidis.RedisMessage) db.SearchEntry {
	e := db.SearchEntry{Key: key, Fields: make(map[string]string, len(pairs)/2)}
	for j := 0; j+1 < len(pairs); j += 2 {
		name, err := pairs[j].ToString()
		if err != nil {
			continue
		}
		value, err := pairs[j+1].ToString()
		if err != nil {
			continue
		}
		switch name {
		case scoreField:
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				e.Score = min(1, max(0, 1-d))
			}
		case VectorField:
		default:
			e.Fields[name] = value
		}
	}
	return e
}

// tagFilter renders terms in order; negated terms get a leading "-".
func tagFilter(expr filter.Expression) string {
	parts := make([]string, 0, len(expr.Terms()))
	for _, t := range expr.Terms() {
		clause := "@" + t.Field + ":{" + escapeTag(t.Value) + "}"
		if t.Negated {
			clause = "-" + clause
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " ")
}

// escapeTag backslash-escapes tag punctuation and spaces.
func escapeTag(v string) string {
	var sb strings.Builder
	sb.Grow(len(v))
	for _, r := range v {
		if strings.ContainsRune(tagPunct, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const tagPunct = ",.<>{}[]\"':;!@#$%^&*()-+=~|/ "
