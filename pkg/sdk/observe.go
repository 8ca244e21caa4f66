package concierge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/concierge/internal/domain"
)

// Outcome label values.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// collectors are shared by every Client registered on the same registry.
type collectors struct {
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

func sdkCollectors(reg prometheus.Registerer) (*collectors, error) {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: "concierge", Subsystem: "sdk", Name: name, Help: help}
	}

	calls, err := shared(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts(opts("operations_total", "SDK operations by outcome.")),
		[]string{"operation", "status"}))
	if err != nil {
		return nil, err
	}
	latency, err := shared(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "concierge",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK operation latency in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	inFlight, err := shared(reg, prometheus.NewGaugeVec(
		prometheus.GaugeOpts(opts("operations_in_flight", "SDK operations currently running.")),
		[]string{"operation"}))
	if err != nil {
		return nil, err
	}
	return &collectors{calls: calls, latency: latency, inFlight: inFlight}, nil
}

// shared registers c, or returns the collector already registered under
// the same descriptor when it has the same concrete type.
func shared[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("concierge: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("concierge: metric registered with type %T", dup.ExistingCollector)
	}
	return existing, nil
}

// observer logs and counts SDK calls. Both the observer and its
// collectors may be nil.
type observer struct {
	log *slog.Logger
	m   *collectors
}

func newObserver(log *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{log: log}
	if reg == nil {
		return o, nil
	}
	m, err := sdkCollectors(reg)
	if err != nil {
		return nil, err
	}
	o.m = m
	return o, nil
}

// track starts timing op. The returned func records the result and must
// be called exactly once, usually deferred with the named error return.
func (o *observer) track(op string) func(error) {
	if o == nil {
		return func(error) {}
	}
	start := time.Now()
	if o.m != nil {
		o.m.inFlight.WithLabelValues(op).Inc()
	}
	return func(err error) {
		took := time.Since(start)
		status := classify(err)
		if o.m != nil {
			o.m.inFlight.WithLabelValues(op).Dec()
			o.m.calls.WithLabelValues(op, status).Inc()
			if status != outcomeRejected {
				o.m.latency.WithLabelValues(op).Observe(took.Seconds())
			}
		}
		if o.log == nil {
			return
		}
		switch status {
		case outcomeOK:
			o.log.Debug("sdk call done", "op", op, "took", took)
		case outcomeRejected:
			o.log.Info("sdk call rejected", "op", op, "error", err)
		default:
			o.log.Warn("sdk call failed", "op", op, "took", took, "error", err)
		}
	}
}

// classify separates caller mistakes from failures of the service.
func classify(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidEntityType):
		return outcomeRejected
	default:
		return outcomeError
	}
}
