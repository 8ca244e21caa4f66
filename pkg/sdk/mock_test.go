package concierge

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
	"github.com/kailas-cloud/concierge/internal/usecase/ingest"
)

// --- Mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockProbedEmbedder struct {
	mockEmbedder
	err error
}

func (m *mockProbedEmbedder) HealthCheck(_ context.Context) error { return m.err }

type mockAsk struct {
	fn func(ctx context.Context, raw string, t entity.Type) (answer.Answer, error)
}

func (m *mockAsk) Ask(ctx context.Context, raw string, t entity.Type) (answer.Answer, error) {
	return m.fn(ctx, raw, t)
}

type mockBuild struct {
	fn func(ctx context.Context, req ingest.BuildRequest) (ingest.BuildResult, error)
}

func (m *mockBuild) Build(ctx context.Context, req ingest.BuildRequest) (ingest.BuildResult, error) {
	return m.fn(ctx, req)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }
