// Package answer runs the question answering pipeline end to end.
package answer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/query"
	"github.com/kailas-cloud/concierge/internal/domain/record"
	"github.com/kailas-cloud/concierge/internal/logger"
)

// Answer is the pipeline output.
type Answer struct {
	Query   string
	Answer  string
	Results []record.Record
}

// Metrics are the optional answer counters; nil fields are skipped.
type Metrics struct {
	// Classification has label "time_reference".
	Classification *prometheus.CounterVec
	// Results has label "entity_type".
	Results *prometheus.HistogramVec
	// Rules has label "rule".
	Rules *prometheus.CounterVec
}

// Service answers free-text questions.
type Service struct {
	retriever  Retriever
	summarizer Summarizer
	metrics    Metrics
}

// New creates an answer service.
func New(retriever Retriever, summarizer Summarizer) *Service {
	return &Service{retriever: retriever, summarizer: summarizer}
}

// WithMetrics attaches Prometheus collectors.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// Ask classifies raw, retrieves and normalizes matches and summarizes them.
// Validation errors are returned before any retrieval happens.
func (s *Service) Ask(ctx context.Context, raw string, t entity.Type) (Answer, error) {
	if !t.IsValid() {
		return Answer{}, fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, t)
	}
	q, err := query.New(raw)
	if err != nil {
		return Answer{}, fmt.Errorf("classify query: %w", err)
	}
	if s.metrics.Classification != nil {
		s.metrics.Classification.WithLabelValues(strconv.FormatBool(q.HasTimeReference())).Inc()
	}

	log := logger.From(ctx)

	matches, err := s.retriever.Retrieve(ctx, q, t)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	records, err := record.NormalizeAll(matches)
	if err != nil {
		log.Error("malformed document in results", zap.Error(err))
		return Answer{}, fmt.Errorf("normalize: %w", err)
	}

	rule := s.summarizer.Rule(q, records)
	text := s.summarizer.Summarize(q, records)
	s.observe(t, len(records), rule)

	log.Debug("answer composed",
		zap.String("entity_type", string(t)),
		zap.Bool("time_reference", q.HasTimeReference()),
		zap.Int("results", len(records)),
		zap.String("rule", ruleLabel(rule, len(records))),
	)

	return Answer{Query: q.Raw(), Answer: text, Results: records}, nil
}

func (s *Service) observe(t entity.Type, n int, rule string) {
	if s.metrics.Results != nil {
		s.metrics.Results.WithLabelValues(string(t)).Observe(float64(n))
	}
	if s.metrics.Rules != nil {
		s.metrics.Rules.WithLabelValues(ruleLabel(rule, n)).Inc()
	}
}

func ruleLabel(rule string, n int) string {
	switch {
	case n == 0:
		return "no_results"
	case rule == "":
		return "fallback"
	default:
		return rule
	}
}
