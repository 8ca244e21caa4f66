package chi

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/usecase/answer"
	"github.com/kailas-cloud/concierge/internal/usecase/health"
)

// Answerer answers a free-text question.
type Answerer interface {
	Ask(ctx context.Context, raw string, t entity.Type) (answer.Answer, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) health.Report
}
