// Package retrieval fetches and ranks documents for a classified query.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/query"
	"github.com/kailas-cloud/concierge/internal/domain/search/filter"
)

// DefaultSearchTimeout bounds every collection call.
const DefaultSearchTimeout = 5 * time.Second

// Service retrieves matches according to the merge policy.
type Service struct {
	rc       *Context
	timeout  time.Duration
	duration *prometheus.HistogramVec
}

// New creates a retrieval service.
// duration is a histogram vec with labels "collection" and "status"; nil disables it.
func New(rc *Context, duration *prometheus.HistogramVec) *Service {
	return &Service{rc: rc, timeout: DefaultSearchTimeout, duration: duration}
}

// WithTimeout sets the per-call deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Mode returns the deployment mode of the underlying context.
func (s *Service) Mode() Mode { return s.rc.mode }

// Retrieve returns ranked matches for q. Every failure wraps domain.ErrRetrievalFailed.
func (s *Service) Retrieve(ctx context.Context, q query.Query, t entity.Type) ([]document.Match, error) {
	text := q.Raw()

	switch {
	case t != entity.All:
		return s.retrieveType(ctx, text, t)
	case s.rc.mode == ModeCombined && q.HasTimeReference():
		return s.retrieveTimed(ctx, text)
	case s.rc.mode == ModeCombined:
		matches, err := s.search(ctx, s.rc.combined, text, MaxResults, filter.Expression{})
		if err != nil {
			return nil, err
		}
		return merge(MaxResults, matches), nil
	default:
		return s.retrieveSplit(ctx, text)
	}
}

// retrieveType serves a type-filtered request in store order.
func (s *Service) retrieveType(ctx context.Context, text string, t entity.Type) ([]document.Match, error) {
	if s.rc.mode == ModeCombined {
		return s.search(ctx, s.rc.combined, text, FilteredK, filter.Tag(document.KeyType, string(t)))
	}
	if t == entity.Event {
		return s.search(ctx, s.rc.event, text, FilteredK, filter.Expression{})
	}
	return s.search(ctx, s.rc.business, text, FilteredK, filter.Expression{})
}

// retrieveTimed fetches events and businesses separately and favours venues with events.
func (s *Service) retrieveTimed(ctx context.Context, text string) ([]document.Match, error) {
	var events, businesses []document.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.search(gctx, s.rc.combined, text, TimeFetch, filter.Tag(document.KeyType, string(entity.Event)))
		return err
	})
	g.Go(func() (err error) {
		businesses, err = s.search(gctx, s.rc.combined, text, TimeFetch, filter.Tag(document.KeyType, string(entity.Business)))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by search
	}

	return merge(MaxResults, events, preferVenues(businesses)), nil
}

func (s *Service) retrieveSplit(ctx context.Context, text string) ([]document.Match, error) {
	var businesses, events []document.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		businesses, err = s.search(gctx, s.rc.business, text, SplitFetch, filter.Expression{})
		return err
	})
	g.Go(func() (err error) {
		events, err = s.search(gctx, s.rc.event, text, SplitFetch, filter.Expression{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by search
	}

	return merge(MaxResults, businesses, events), nil
}

// search runs one collection call under the deadline. A nil collection yields no matches.
func (s *Service) search(
	ctx context.Context, c Collection, text string, k int, f filter.Expression,
) ([]document.Match, error) {
	if c == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	matches, err := c.Search(ctx, text, k, f)
	s.observe(c.Name(), start, err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: deadline %s exceeded: %w", domain.ErrRetrievalFailed, c.Name(), s.timeout, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRetrievalFailed, c.Name(), err)
	}
	return matches, nil
}

func (s *Service) observe(collection string, start time.Time, err error) {
	if s.duration == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	s.duration.WithLabelValues(collection, status).Observe(time.Since(start).Seconds())
}
