// Package config loads the YAML configuration shared by the API server and the indexer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of config/<env>.yaml. Durations use Go syntax ("10s", "720h").
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Collections CollectionsConfig `yaml:"collections"`
	Storage     StorageConfig     `yaml:"storage"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Index       IndexConfig       `yaml:"index"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the vector store.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // valkey or redis
	Addrs            []string      `yaml:"addrs"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	ReadinessTimeout time.Duration `yaml:"readiness_timeout"`
}

// EmbeddingConfig points at an OpenAI-compatible /embeddings endpoint (TEI, OpenAI, Ollama).
type EmbeddingConfig struct {
	Provider            string        `yaml:"provider"` // metrics label only
	APIKey              string        `yaml:"api_key"`
	BaseURL             string        `yaml:"base_url"`
	Model               string        `yaml:"model"`
	Dimensions          int           `yaml:"dimensions"`
	QueryInstruction    string        `yaml:"query_instruction"`
	DocumentInstruction string        `yaml:"document_instruction"`
	CacheTTL            time.Duration `yaml:"cache_ttl"` // 0 keeps vectors forever
	MaxBatchSize        int           `yaml:"max_batch_size"`
	Retry               RetryConfig   `yaml:"retry"`
}

// RetryConfig bounds retries of transient provider failures (429, 5xx, network).
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"` // 1 disables retries
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// CollectionsConfig names the three vector collections.
type CollectionsConfig struct {
	Combined string `yaml:"combined"`
	Business string `yaml:"business"`
	Event    string `yaml:"event"`
}

// StorageConfig holds the key layout.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	SearchTimeout time.Duration `yaml:"search_timeout"`
}

// IndexConfig holds HNSW and build pipeline settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	BatchSize       int `yaml:"batch_size"`
	Workers         int `yaml:"workers"`
}

// AuthConfig lists accepted API keys; empty disables authentication.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig overrides the environment's default log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads config/<env>.yaml.
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes data, then applies defaults and validation.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
