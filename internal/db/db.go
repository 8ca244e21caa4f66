// Package db defines the store facade the repositories are written against:
// FT indexes over hashes, KNN search and a small binary KV cache.
package db

import (
	"context"
	"time"
)

// Store is the full facade implemented by the redis-family driver.
// Repositories depend on the narrow interfaces below.
//
//nolint:interfacebloat // facade
type Store interface {
	Pinger
	HashWriter
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one hash written by a pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashWriter writes document hashes.
type HashWriter interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// KVStore holds opaque values, used by the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager creates, drops and probes FT indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs queries over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	CountDocuments(ctx context.Context, index string) (int, error)
}
