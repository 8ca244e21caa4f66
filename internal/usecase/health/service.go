// Package health aggregates database, provider and collection probes into one report.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the overall verdict.
type Status string

// Overall verdicts. Unhealthy means the database is unreachable and nothing can be served.
const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

// Probe outcomes. CheckEmpty is a reachable collection without documents.
const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
	CheckEmpty CheckResult = "empty"
)

// DefaultProbeTimeout bounds each individual probe.
const DefaultProbeTimeout = 2 * time.Second

// Report is the aggregated result. Checks are keyed "database", "embedding"
// and "collection:<name>"; Documents holds counts of reachable collections.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents map[string]int
}

// Service runs the probes.
type Service struct {
	db          Pinger
	provider    ProviderProbe
	collections []Counter
	timeout     time.Duration
}

// New creates a Service. provider may be nil to skip the embedding probe.
func New(db Pinger, provider ProviderProbe, collections ...Counter) *Service {
	return &Service{db: db, provider: provider, collections: collections, timeout: DefaultProbeTimeout}
}

// WithTimeout overrides the per-probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check pings the database, then probes the provider and counts the
// collections concurrently. Collections are not counted while the database is down.
func (s *Service) Check(ctx context.Context) Report {
	r := &collector{report: Report{
		Checks:    make(map[string]CheckResult, 2+len(s.collections)),
		Documents: make(map[string]int, len(s.collections)),
	}}

	dbUp := s.probe(ctx, s.db.Ping) == nil
	r.set("database", result(dbUp))

	var g errgroup.Group
	if s.provider != nil {
		g.Go(func() error {
			err := s.probe(ctx, s.provider.HealthCheck)
			r.set("embedding", result(err == nil))
			return nil
		})
	}
	if dbUp {
		for _, c := range s.collections {
			g.Go(func() error {
				s.count(ctx, c, r)
				return nil
			})
		}
	}
	_ = g.Wait()

	switch {
	case !dbUp:
		r.report.Status = Unhealthy
	case r.allOK():
		r.report.Status = Healthy
	default:
		r.report.Status = Degraded
	}
	return r.report
}

func (s *Service) count(ctx context.Context, c Counter, r *collector) {
	var n int
	err := s.probe(ctx, func(ctx context.Context) (err error) {
		n, err = c.Count(ctx)
		return err
	})
	key := "collection:" + c.Name()
	switch {
	case err != nil:
		r.set(key, CheckError)
	case n == 0:
		r.set(key, CheckEmpty)
		r.docs(c.Name(), 0)
	default:
		r.set(key, CheckOK)
		r.docs(c.Name(), n)
	}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}

// collector guards the report while probes finish concurrently.
type collector struct {
	mu     sync.Mutex
	report Report
}

func (c *collector) set(key string, v CheckResult) {
	c.mu.Lock()
	c.report.Checks[key] = v
	c.mu.Unlock()
}

func (c *collector) docs(name string, n int) {
	c.mu.Lock()
	c.report.Documents[name] = n
	c.mu.Unlock()
}

func (c *collector) allOK() bool {
	for _, v := range c.report.Checks {
		if v != CheckOK {
			return false
		}
	}
	return true
}
