package health

import "context"

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderProbe reports embedding provider reachability.
type ProviderProbe interface {
	HealthCheck(ctx context.Context) error
}

// Counter is a collection that can count its documents.
type Counter interface {
	Name() string
	Count(ctx context.Context) (int, error)
}
