package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		fail("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 || c.HTTP.ShutdownTimeout < 0 {
		fail("http timeouts must not be negative")
	}

	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		fail("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		fail("database.addrs is required")
	}

	if c.Embedding.BaseURL == "" {
		fail("embedding.base_url is required")
	}
	if c.Embedding.Dimensions < 0 {
		fail("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.CacheTTL < 0 {
		fail("embedding.cache_ttl must not be negative, got %s", c.Embedding.CacheTTL)
	}
	if r := c.Embedding.Retry; r.MaxAttempts < 1 || r.InitialBackoff < 0 || r.MaxBackoff < r.InitialBackoff {
		fail("embedding.retry needs max_attempts >= 1 and 0 <= initial_backoff <= max_backoff")
	}

	errs = append(errs, c.validateCollections()...)

	if c.Retrieval.SearchTimeout < 0 {
		fail("retrieval.search_timeout must not be negative, got %s", c.Retrieval.SearchTimeout)
	}
	if c.Index.BatchSize < 0 || c.Index.Workers < 0 {
		fail("index.batch_size and index.workers must not be negative")
	}
	return errors.Join(errs...)
}

// validateCollections rejects names unusable as key segments and names shared by two collections.
func (c *Config) validateCollections() []error {
	named := []struct{ key, name string }{
		{"combined", c.Collections.Combined},
		{"business", c.Collections.Business},
		{"event", c.Collections.Event},
	}
	var errs []error
	owner := make(map[string]string, len(named))
	for _, n := range named {
		if strings.ContainsAny(n.name, ":{} ") {
			errs = append(errs, fmt.Errorf("collections.%s contains reserved characters: %q", n.key, n.name))
		}
		if other, ok := owner[n.name]; ok {
			errs = append(errs, fmt.Errorf("collections.%s and collections.%s share the name %q", other, n.key, n.name))
			continue
		}
		owner[n.name] = n.key
	}
	return errs
}
