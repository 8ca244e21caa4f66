package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// QueryUsage accumulates the embedding cost of one query across collection searches.
// Split-mode searches record into it concurrently.
type QueryUsage struct {
	tokens   atomic.Int64
	searches atomic.Int64
}

// WithQueryUsage returns ctx carrying a fresh usage collector.
func WithQueryUsage(ctx context.Context) (context.Context, *QueryUsage) {
	u := new(QueryUsage)
	return context.WithValue(ctx, usageKey{}, u), u
}

// QueryUsageFrom returns the collector in ctx, or nil.
func QueryUsageFrom(ctx context.Context) *QueryUsage {
	u, _ := ctx.Value(usageKey{}).(*QueryUsage)
	return u
}

// Record counts one embedded search. Cache hits record zero tokens. Safe on nil.
func (u *QueryUsage) Record(tokens int) {
	if u == nil {
		return
	}
	u.searches.Add(1)
	u.tokens.Add(int64(tokens))
}

// Tokens returns the total tokens recorded.
func (u *QueryUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Searches returns how many searches embedded the query.
func (u *QueryUsage) Searches() int {
	if u == nil {
		return 0
	}
	return int(u.searches.Load())
}
