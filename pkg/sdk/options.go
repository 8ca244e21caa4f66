package concierge

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	embedder       Embedder
	queryPrefix    string
	documentPrefix string

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	keyPrefix        string
	combined         string
	business         string
	event            string

	batchSize     int
	workers       int
	searchTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		vectorDimensions: 384,
		keyPrefix:        "concierge:",
		combined:         "combined",
		business:         "businesses",
		event:            "events",
	}
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required for Ask and Build.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingPrefixes sets the instructions prepended to queries and to
// listing texts before embedding, e.g. "query: " and "passage: " for E5 models.
func WithEmbeddingPrefixes(query, document string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryPrefix = query
		c.documentPrefix = document
	})
}

// WithVectorDimensions sets the vector dimension of created indexes.
// Defaults to 384 (all-MiniLM-L6-v2).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithKeyPrefix sets the prefix of every key the client writes. Default: "concierge:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCollections overrides the combined, business and event collection names.
// Empty names keep their defaults.
func WithCollections(combined, business, event string) Option {
	return optionFunc(func(c *clientConfig) {
		if combined != "" {
			c.combined = combined
		}
		if business != "" {
			c.business = business
		}
		if event != "" {
			c.event = event
		}
	})
}

// WithBatching sets documents per embedding request and concurrent batches for Build.
func WithBatching(batchSize, workers int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = batchSize
		c.workers = workers
	})
}

// WithSearchTimeout bounds every collection search issued by Ask. Default: 5s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
