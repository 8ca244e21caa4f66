// Package redis implements db.Store on rueidis for Redis 8+ and Valkey with the search module.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/concierge/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName = "concierge" // shown in CLIENT LIST
	readyPoll  = 100 * time.Millisecond
)

// Config holds connection parameters.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration // zero keeps the rueidis default
}

// clientOption forces RESP2 because search replies are parsed as flat arrays.
// Client-side caching is off since nothing here reads the same key twice.
func (c Config) clientOption() rueidis.ClientOption {
	opt := rueidis.ClientOption{
		InitAddress:  c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		SelectDB:     c.DB,
		ClientName:   clientName,
		DisableCache: true,
		AlwaysRESP2:  true,
	}
	if c.DialTimeout > 0 {
		opt.Dialer = net.Dialer{Timeout: c.DialTimeout}
	}
	return opt
}

// Store is the rueidis-backed store. Both the "valkey" and "redis" drivers use it.
type Store struct {
	client rueidis.Client
}

// NewStore dials the first reachable address.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("at least one address is required")
	}
	client, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", strings.Join(cfg.Addrs, ","), err)
	}
	return &Store{client: client}, nil
}

// NewStoreForTest wraps an existing client, typically rueidis/mock.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings at once and then every readyPoll until the store answers
// or timeout passes.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var last error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		last = s.Ping(ctx)
		return struct{}{}, last
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(readyPoll)),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err == nil {
		return nil
	}
	if last == nil {
		last = err
	}
	return fmt.Errorf("database not ready after %s: %w", timeout, last)
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error containing substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	return ok && strings.Contains(strings.ToLower(re.Error()), substr)
}
