package config

import "time"

// ApplyDefaults fills zero-valued settings.
func (c *Config) ApplyDefaults() {
	orDefault(&c.HTTP.Port, 8080)
	orDefault(&c.HTTP.ReadTimeout, 10*time.Second)
	orDefault(&c.HTTP.WriteTimeout, 30*time.Second)
	orDefault(&c.HTTP.ShutdownTimeout, 10*time.Second)

	orDefault(&c.Database.Driver, "valkey")
	orDefault(&c.Database.DialTimeout, 5*time.Second)
	orDefault(&c.Database.ReadinessTimeout, 10*time.Second)

	orDefault(&c.Embedding.Provider, "openai")
	orDefault(&c.Embedding.Model, "sentence-transformers/all-MiniLM-L6-v2")
	orDefault(&c.Embedding.Dimensions, 384)
	orDefault(&c.Embedding.MaxBatchSize, 128)
	orDefault(&c.Embedding.Retry.MaxAttempts, 3)
	orDefault(&c.Embedding.Retry.InitialBackoff, 200*time.Millisecond)
	orDefault(&c.Embedding.Retry.MaxBackoff, 2*time.Second)

	orDefault(&c.Collections.Combined, "combined")
	orDefault(&c.Collections.Business, "businesses")
	orDefault(&c.Collections.Event, "events")
	orDefault(&c.Storage.KeyPrefix, "concierge:")
	orDefault(&c.Retrieval.SearchTimeout, 5*time.Second)

	orDefault(&c.Index.HNSWM, 16)
	orDefault(&c.Index.HNSWEFConstruct, 200)
	orDefault(&c.Index.BatchSize, 64)
	orDefault(&c.Index.Workers, 4)
}

func orDefault[T comparable](p *T, def T) {
	var zero T
	if *p == zero {
		*p = def
	}
}
