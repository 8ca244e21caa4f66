package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/concierge/internal/db"
	domdoc "github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/repository/collection"
)

// store is the consumer interface for document writes (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo writes documents into one collection.
type Repo struct {
	store     store
	keys      collection.Keyspace
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a document repository.
func New(s store, keys collection.Keyspace, vectorDim int) *Repo {
	return &Repo{store: s, keys: keys, vectorDim: vectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Name returns the collection name.
func (r *Repo) Name() string { return r.keys.Name }

// Recreate drops the collection index together with its documents and creates it empty.
func (r *Repo) Recreate(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.keys.IndexName(), true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.keys.Name, err)
	}

	def, err := r.indexDefinition()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", r.keys.Name, err)
	}
	return nil
}

// UpsertBatch writes items in a single pipelined round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, items []domdoc.Embedded) error {
	if len(items) == 0 {
		return nil
	}

	batch := make([]db.HashSetItem, len(items))
	for i := range items {
		if len(items[i].Vector) != r.vectorDim {
			return fmt.Errorf("document %s: vector dim %d, want %d",
				items[i].Document.ID(), len(items[i].Vector), r.vectorDim)
		}
		batch[i] = db.HashSetItem{
			Key:    r.keys.Key(items[i].Document.ID()),
			Fields: buildHashFields(items[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("hset batch %s: %w", r.keys.Name, err)
	}
	return nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	return db.NewIndex(r.keys.IndexName(), r.keys.KeyPrefix()).
		Tag(domdoc.KeyType, domdoc.KeyHasEvents).
		Numeric(domdoc.KeyEventCount).
		Vector(collection.VectorField, db.HNSW{Dim: r.vectorDim, M: r.hnsw.M, EFConstruct: r.hnsw.EFConstruct}).
		Build()
}

// buildHashFields flattens an item into HSET fields.
func buildHashFields(it domdoc.Embedded) map[string]string {
	meta := it.Document.Metadata()
	m := make(map[string]string, 2+len(meta))
	for k, v := range meta {
		m[k] = v
	}
	m[collection.ContentField] = it.Document.Content()
	m[collection.VectorField] = string(db.EncodeVector(it.Vector))
	return m
}
