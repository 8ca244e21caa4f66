package concierge

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/listing"
	"github.com/kailas-cloud/concierge/internal/domain/record"
	"github.com/kailas-cloud/concierge/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
	"github.com/kailas-cloud/concierge/internal/usecase/ingest"
)

// embedderAdapter bridges the public Embedder to domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// BatchEmbed uses the inner batch endpoint when there is one.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.EmbedEach(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(r.Embeddings) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingProviderError, len(r.Embeddings), len(texts))
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder stands in when no embedder is configured; Health still works.
type noopEmbedder struct{}

var errNoEmbedder = errors.New("concierge: embedder not configured (use WithEmbedder)")

func (n *noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errNoEmbedder
}

// healthChecker returns the embedder's probe, or an untyped nil when it has none.
func healthChecker(e Embedder) healthuc.ProviderProbe {
	if hc, ok := e.(HealthChecker); ok {
		return hc
	}
	return nil
}

// --- Converters ---

func toBuildRequest(in BuildInput) (ingest.BuildRequest, error) {
	mode := ingest.ModeCombined
	if in.Mode != "" {
		m, err := ingest.ParseMode(string(in.Mode))
		if err != nil {
			return ingest.BuildRequest{}, err
		}
		mode = m
	}

	req := ingest.BuildRequest{
		Businesses: make([]listing.Business, len(in.Businesses)),
		Events:     make([]listing.Event, len(in.Events)),
		Mode:       mode,
	}
	for i, b := range in.Businesses {
		req.Businesses[i] = listing.Business{
			Name:        b.Name,
			Location:    b.Location,
			Description: b.Description,
			URL:         b.URL,
			Website:     b.Website,
			ImageURL:    b.ImageURL,
			Phone:       b.Phone,
			Email:       b.Email,
		}
	}
	for i, e := range in.Events {
		req.Events[i] = listing.Event{
			Name:        e.Name,
			Date:        e.Date,
			Time:        e.Time,
			Location:    e.Location,
			Description: e.Description,
			URL:         e.URL,
			ImageURL:    e.ImageURL,
			Source:      e.Source,
		}
	}
	return req, nil
}

func fromBuildResult(r ingest.BuildResult) BuildResult {
	return BuildResult{
		Businesses:        r.Businesses,
		Events:            r.Events,
		SkippedBusinesses: r.SkippedBusinesses,
		SkippedEvents:     r.SkippedEvents,
		LinkedEvents:      r.LinkedEvents,
		Collections:       r.Collections,
		Tokens:            r.Tokens,
		Duration:          r.Duration,
	}
}

func fromAnswer(a answer.Answer) Answer {
	results := make([]Result, len(a.Results))
	for i := range a.Results {
		results[i] = fromRecord(&a.Results[i])
	}
	return Answer{Query: a.Query, Answer: a.Answer, Results: results}
}

func fromRecord(r *record.Record) Result {
	return Result{
		Type:           EntityType(r.Type),
		Name:           r.Name,
		Location:       r.Location,
		Description:    r.Description,
		URL:            r.URL,
		ImageURL:       r.ImageURL,
		Score:          r.Score,
		Website:        r.Website,
		Phone:          r.Phone,
		Email:          r.Email,
		HasEvents:      r.HasEvents,
		EventCount:     r.EventCount,
		UpcomingEvents: r.UpcomingEvents,
		Date:           r.Date,
		Time:           r.Time,
		Source:         r.Source,
		HasVenueInfo:   r.HasVenueInfo,
		VenueInfo:      r.VenueInfo,
		BusinessID:     r.BusinessID,
	}
}

func fromReport(r healthuc.Report) HealthStatus {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(r.Status), Checks: checks, Documents: r.Documents}
}
