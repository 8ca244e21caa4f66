package concierge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/app"
	"github.com/kailas-cloud/concierge/internal/db"
	dbRedis "github.com/kailas-cloud/concierge/internal/db/redis"
	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/summary"
	collectionrepo "github.com/kailas-cloud/concierge/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/concierge/internal/repository/document"
	"github.com/kailas-cloud/concierge/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
	"github.com/kailas-cloud/concierge/internal/usecase/ingest"
	"github.com/kailas-cloud/concierge/internal/usecase/retrieval"
)

const readyTimeout = 10 * time.Second

type askUseCase interface {
	Ask(ctx context.Context, raw string, t entity.Type) (answer.Answer, error)
}

type buildUseCase interface {
	Build(ctx context.Context, req ingest.BuildRequest) (ingest.BuildResult, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the embedded concierge. Safe for concurrent use.
type Client struct {
	store   db.Store
	builder buildUseCase
	health  healthUseCase

	// resolve probes the collections and wires the answer pipeline.
	// The result is cached until the next Build.
	resolve func(ctx context.Context) (askUseCase, error)
	mu      sync.Mutex
	answers askUseCase

	obs *observer
}

// New creates a client connected to Valkey or Redis.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, fmt.Errorf("concierge: address is required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, readyTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("concierge: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("concierge: %s: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("concierge: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	var emb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}

	keys := func(name string) collectionrepo.Keyspace {
		return collectionrepo.Keyspace{Prefix: cfg.keyPrefix, Name: name}
	}
	writer := func(name string) *documentrepo.Repo {
		return documentrepo.New(store, keys(name), cfg.vectorDimensions).
			WithHNSW(documentrepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct})
	}

	query := domain.WithPrefix(emb, cfg.queryPrefix)
	combined := collectionrepo.New(store, query, keys(cfg.combined))
	business := collectionrepo.New(store, query, keys(cfg.business))
	event := collectionrepo.New(store, query, keys(cfg.event))

	builder := ingest.New(domain.WithPrefix(emb, cfg.documentPrefix), ingest.Writers{
		Combined: writer(cfg.combined),
		Business: writer(cfg.business),
		Event:    writer(cfg.event),
	}, zap.NewNop()).WithBatchSize(cfg.batchSize).WithWorkers(cfg.workers)

	return &Client{
		store:   store,
		builder: builder,
		health:  healthuc.New(store, healthChecker(cfg.embedder), combined, business, event),
		resolve: func(ctx context.Context) (askUseCase, error) {
			rc, err := app.SelectContext(ctx, combined, business, event, zap.NewNop())
			if err != nil {
				return nil, err
			}
			ret := retrieval.New(rc, nil).WithTimeout(cfg.searchTimeout)
			return answer.New(ret, summary.New()), nil
		},
		obs: obs,
	}
}

// Ask answers a free-text question with ranked businesses and events.
// An empty t means TypeAll.
func (c *Client) Ask(ctx context.Context, query string, t EntityType) (_ Answer, err error) {
	done := c.obs.track("ask")
	defer func() { done(err) }()

	et, err := entity.Parse(string(t))
	if err != nil {
		return Answer{}, err
	}
	svc, err := c.answerer(ctx)
	if err != nil {
		return Answer{}, err
	}
	ans, err := svc.Ask(ctx, query, et)
	if err != nil {
		return Answer{}, err
	}
	return fromAnswer(ans), nil
}

// Build recreates the collections from the given listings.
// Only collections with something to write are touched.
func (c *Client) Build(ctx context.Context, in BuildInput) (_ BuildResult, err error) {
	done := c.obs.track("build")
	defer func() { done(err) }()

	req, err := toBuildRequest(in)
	if err != nil {
		return BuildResult{}, err
	}
	res, err := c.builder.Build(ctx, req)
	c.reset()
	if err != nil {
		return BuildResult{}, err
	}
	return fromBuildResult(res), nil
}

// Health checks the store, the embedder (when it can be probed) and the collections.
func (c *Client) Health(ctx context.Context) HealthStatus {
	done := c.obs.track("health")
	report := c.health.Check(ctx)

	var err error
	if report.Status == healthuc.Unhealthy {
		err = errUnhealthy
	}
	done(err)
	return fromReport(report)
}

// Ping checks connectivity to the store.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the store connection.
func (c *Client) Close() error {
	if c.store != nil {
		c.store.Close()
	}
	return nil
}

func (c *Client) answerer(ctx context.Context) (askUseCase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.answers != nil {
		return c.answers, nil
	}
	svc, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	c.answers = svc
	return svc, nil
}

// reset drops the cached pipeline so the next Ask re-probes the collections.
func (c *Client) reset() {
	c.mu.Lock()
	c.answers = nil
	c.mu.Unlock()
}
