package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "retrieval_search_duration_seconds",
			Help:      "Collection search duration in seconds, embedding included",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection", "status"},
	)

	QueryClassificationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "query_classification_total",
			Help:      "Queries by time-intent classification",
		},
		[]string{"time_reference"}, // "true" / "false"
	)

	AnswerResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "answer_results",
			Help:      "Number of result cards per answer",
			Buckets:   []float64{0, 1, 3, 5, 7, 10},
		},
		[]string{"entity_type"},
	)

	SummaryRuleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "summary_rule_total",
			Help:      "Answers by the summary rule that produced them",
		},
		[]string{"rule"},
	)
)

var retrievalOnce sync.Once

// RegisterRetrievalMetrics registers retrieval and answer metrics on the default registry.
func RegisterRetrievalMetrics() {
	retrievalOnce.Do(func() {
		prometheus.MustRegister(
			RetrievalSearchDuration,
			QueryClassificationTotal,
			AnswerResults,
			SummaryRuleTotal,
		)
	})
}
