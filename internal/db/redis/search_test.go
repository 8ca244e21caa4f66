package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/concierge/internal/db"
	"github.com/kailas-cloud/concierge/internal/domain/search/filter"
)

func TestSearchKNN_FilteredQuery(t *testing.T) {
	s, c := newMockStore(t)

	var captured []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			captured = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("concierge:combined:e-1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.1"),
				mock.RedisString("__content"), mock.RedisString("Name: Jazz Night"),
				mock.RedisString("type"), mock.RedisString("event"),
			),
			mock.RedisString("concierge:combined:e-2"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("1.4"),
				mock.RedisString("__vector"), mock.RedisString("\x00\x00\x80\x3f"),
				mock.RedisString("type"), mock.RedisString("event"),
			),
		)))

	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Index:  "concierge:combined:idx",
		Filter: filter.Tag("type", "event"),
		Vector: []float32{0.1, 0.2},
		K:      5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured[1] != "concierge:combined:idx" {
		t.Errorf("index = %q", captured[1])
	}
	if captured[2] != "(@type:{event})=>[KNN 5 @__vector $BLOB AS __vector_score]" {
		t.Errorf("query = %q", captured[2])
	}
	if tail := captured[len(captured)-2:]; tail[0] != "DIALECT" || tail[1] != "2" {
		t.Errorf("expected DIALECT 2, got %v", tail)
	}

	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("total=%d entries=%d, want 2/2", res.Total, len(res.Entries))
	}
	first := res.Entries[0]
	if first.Key != "concierge:combined:e-1" || first.Fields["__content"] != "Name: Jazz Night" {
		t.Errorf("unexpected entry: %+v", first)
	}
	if first.Score < 0.89 || first.Score > 0.91 {
		t.Errorf("score = %f, want ~0.9", first.Score)
	}
	if _, ok := first.Fields["__vector_score"]; ok {
		t.Error("score field should be stripped")
	}
	second := res.Entries[1]
	if second.Score != 0 {
		t.Errorf("distance above 1 should clamp to 0, got %f", second.Score)
	}
	if _, ok := second.Fields["__vector"]; ok {
		t.Error("vector bytes should be stripped")
	}
}

func TestSearchKNN_Unfiltered(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*=>[KNN 7 @__vector $BLOB AS __vector_score]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{Index: "idx", Vector: []float32{0.1}, K: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(res.Entries))
	}
}

func TestSearchKNN_ReturnFields(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) > 6 && cmd[3] == "RETURN" && cmd[4] == "2" && cmd[5] == "name" && cmd[6] == "__vector_score"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Index: "idx", Vector: []float32{0.1}, K: 3,
		Fields: []string{"name", "__vector_score"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchKNN_Errors(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{Index: "idx", Vector: []float32{0.1}, K: 10})
	if !errors.Is(err, context.DeadlineExceeded) || !isDBError(err) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}

	s, c = newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("idx: no such index")))
	_, err = s.SearchKNN(context.Background(), &db.KNNQuery{Index: "idx", Vector: []float32{0.1}, K: 10})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()
	for name, q := range map[string]*db.KNNQuery{
		"no index":   {Vector: []float32{0.1}, K: 10},
		"no vector":  {Index: "idx", K: 10},
		"zero k":     {Index: "idx", Vector: []float32{0.1}},
		"bad filter": {Index: "idx", Vector: []float32{0.1}, K: 10, Filter: filter.Tag("type", "")},
	} {
		if _, err := s.SearchKNN(ctx, q); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCountDocuments(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*", "LIMIT", "0", "0")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	n, err := s.CountDocuments(context.Background(), "idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

func TestCountDocuments_MissingIndex(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*", "LIMIT", "0", "0")).
		Return(mock.Result(mock.RedisError("idx: no such index")))

	if _, err := s.CountDocuments(context.Background(), "idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestTagFilter(t *testing.T) {
	if got := tagFilter(filter.Expression{}); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}

	expr := filter.Tag("type", "business").Not("has_events", "false")
	if got := tagFilter(expr); got != "@type:{business} -@has_events:{false}" {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestEscapeTag(t *testing.T) {
	tests := map[string]string{
		"event":          "event",
		"Joe's Bar-B-Q":  `Joe\'s\ Bar\-B\-Q`,
		"a|b/c":          `a\|b\/c`,
		"concierge:b-12": `concierge\:b\-12`,
	}
	for in, want := range tests {
		if got := escapeTag(in); got != want {
			t.Errorf("escapeTag(%q) = %q, want %q", in, got, want)
		}
	}
}
