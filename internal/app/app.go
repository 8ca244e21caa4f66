// Package app assembles the components shared by the API server and the indexer.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/config"
	dbRedis "github.com/kailas-cloud/concierge/internal/db/redis"
	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/metrics"
	collectionrepo "github.com/kailas-cloud/concierge/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/concierge/internal/repository/document"
	"github.com/kailas-cloud/concierge/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/concierge/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/concierge/internal/usecase/embedding"
)

// OpenStore connects to the configured database and waits until it answers.
// Both drivers speak the same FT.* dialect, so they share the rueidis store.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, cfg.ReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("driver", cfg.Driver),
		zap.Strings("addrs", cfg.Addrs),
	)
	return store, nil
}

// Embedders are the query and document chains over one provider.
type Embedders struct {
	Query    domain.Embedder
	Document domain.Embedder
	// Provider is the undecorated client, used for health checks.
	Provider *openaiEmb.Embedder
}

// NewEmbedders builds both decorator chains: OpenAI -> Cached -> Guarded -> Prefixed.
// store may be nil to disable caching.
func NewEmbedders(cfg config.EmbeddingConfig, keyPrefix string, store *dbRedis.Store, logger *zap.Logger) Embedders {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Config{
			Prefix: keyPrefix + "emb:",
			Model:  cfg.Model,
			TTL:    cfg.CacheTTL,
		}, logger).WithCounter(metrics.EmbeddingCacheTotal)
	}

	guarded := embeddinguc.NewGuarded(embedder, embeddinguc.Options{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		ChunkSize: cfg.MaxBatchSize,
		Retry: embeddinguc.RetryPolicy{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.Retry.InitialBackoff,
			MaxBackoff:     cfg.Retry.MaxBackoff,
		},
	}, logger)

	// cache keys include the instruction prefix
	return Embedders{
		Query:    domain.WithPrefix(guarded, cfg.QueryInstruction),
		Document: domain.WithPrefix(guarded, cfg.DocumentInstruction),
		Provider: base,
	}
}

// Keyspace returns the key layout of a named collection.
func Keyspace(cfg *config.Config, name string) collectionrepo.Keyspace {
	return collectionrepo.Keyspace{Prefix: cfg.Storage.KeyPrefix, Name: name}
}

// Collections are the read repositories of all configured collections.
type Collections struct {
	Combined *collectionrepo.Repo
	Business *collectionrepo.Repo
	Event    *collectionrepo.Repo
}

// NewCollections creates read repositories; queries are vectorized with embedder.
func NewCollections(cfg *config.Config, store *dbRedis.Store, embedder domain.Embedder) Collections {
	return Collections{
		Combined: collectionrepo.New(store, embedder, Keyspace(cfg, cfg.Collections.Combined)),
		Business: collectionrepo.New(store, embedder, Keyspace(cfg, cfg.Collections.Business)),
		Event:    collectionrepo.New(store, embedder, Keyspace(cfg, cfg.Collections.Event)),
	}
}

// NewWriter creates a document writer for a named collection.
func NewWriter(cfg *config.Config, store *dbRedis.Store, name string) *documentrepo.Repo {
	return documentrepo.New(store, Keyspace(cfg, name), cfg.Embedding.Dimensions).
		WithHNSW(documentrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
}
