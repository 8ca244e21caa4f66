package embedding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/metrics"
)

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

func newGuarded(next domain.Embedder, chunk int, retry RetryPolicy) *Guarded {
	return NewGuarded(next, Options{Provider: "tei", Model: "minilm", ChunkSize: chunk, Retry: retry}, zap.NewNop())
}

var (
	errOverloaded = fmt.Errorf("503 overloaded: %w: %w", domain.ErrEmbeddingProviderError, domain.ErrTransient)
	errBadInput   = fmt.Errorf("413 too long: %w", domain.ErrEmbeddingProviderError)
)

func TestEmbed_Success(t *testing.T) {
	next := &scriptedEmbedder{}
	res, err := newGuarded(next, 0, fastRetry).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 1 || res.TotalTokens != 1 || next.calls != 1 {
		t.Fatalf("unexpected result %+v after %d calls", res, next.calls)
	}
}

func TestEmbed_RetriesTransient(t *testing.T) {
	before := testutil.ToFloat64(metrics.EmbeddingRetriesTotal.WithLabelValues("tei", "minilm"))
	next := &scriptedEmbedder{failures: []error{errOverloaded, errOverloaded}}

	if _, err := newGuarded(next, 0, fastRetry).Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if next.calls != 3 {
		t.Errorf("calls = %d, want 3", next.calls)
	}
	if got := testutil.ToFloat64(metrics.EmbeddingRetriesTotal.WithLabelValues("tei", "minilm")) - before; got != 2 {
		t.Errorf("retries metric grew by %v, want 2", got)
	}
}

func TestEmbed_GivesUpAfterMaxAttempts(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{errOverloaded, errOverloaded, errOverloaded, errOverloaded}}
	_, err := newGuarded(next, 0, fastRetry).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if next.calls != 3 {
		t.Errorf("calls = %d, want 3", next.calls)
	}
}

func TestEmbed_PermanentNotRetried(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{errBadInput}}
	_, err := newGuarded(next, 0, fastRetry).Embed(context.Background(), "hello")
	if !errors.Is(err, errBadInput) {
		t.Fatalf("expected the provider error, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
}

func TestEmbed_NoRetryPolicy(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{errOverloaded}}
	if _, err := newGuarded(next, 0, RetryPolicy{}).Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without retries")
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
}

func TestEmbed_StopsOnCanceledContext(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{errOverloaded, errOverloaded}}
	ctx, cancel := context.WithCancel(context.Background())
	next.onCall = cancel

	slow := RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: time.Second}
	if _, err := newGuarded(next, 0, slow).Embed(ctx, "hello"); err == nil {
		t.Fatal("expected error after cancellation")
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
}

func TestBatchEmbed_Chunks(t *testing.T) {
	next := &scriptedEmbedder{}
	res, err := newGuarded(next, 2, fastRetry).BatchEmbed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(next.batchSizes, []int{2, 2, 1}) {
		t.Errorf("chunk sizes = %v, want [2 2 1]", next.batchSizes)
	}
	if len(res.Embeddings) != 5 || res.TotalTokens != 5 {
		t.Fatalf("unexpected result: %d embeddings, %d tokens", len(res.Embeddings), res.TotalTokens)
	}
	for i, v := range res.Embeddings {
		if v[0] != float32(i%2) {
			t.Errorf("embeddings[%d] = %v out of order", i, v)
		}
	}
}

func TestBatchEmbed_RetriesOnlyFailedChunk(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{nil, errOverloaded}}
	if _, err := newGuarded(next, 2, fastRetry).BatchEmbed(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(next.batchSizes, []int{2, 1, 1}) {
		t.Errorf("chunk sizes = %v, want [2 1 1]", next.batchSizes)
	}
}

func TestBatchEmbed_ChunkFailure(t *testing.T) {
	next := &scriptedEmbedder{failures: []error{nil, errBadInput}}
	_, err := newGuarded(next, 2, fastRetry).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, errBadInput) {
		t.Fatalf("expected chunk error, got %v", err)
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	next := &scriptedEmbedder{}
	res, err := newGuarded(next, 2, fastRetry).BatchEmbed(context.Background(), nil)
	if err != nil || res.Embeddings != nil || next.calls != 0 {
		t.Fatalf("expected no call for empty input: %+v %v", res, err)
	}
}

func TestBatchEmbed_SingleOnlyProvider(t *testing.T) {
	next := &singleEmbedder{}
	res, err := newGuarded(next, 0, fastRetry).BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || next.calls != 2 {
		t.Errorf("expected one call per text, got %d", next.calls)
	}
}

// --- Mocks ---

// scriptedEmbedder fails call n with failures[n] (nil succeeds) and succeeds afterwards.
type scriptedEmbedder struct {
	failures   []error
	calls      int
	batchSizes []int
	onCall     func()
}

func (s *scriptedEmbedder) next() error {
	s.calls++
	if s.onCall != nil {
		s.onCall()
	}
	if s.calls <= len(s.failures) {
		return s.failures[s.calls-1]
	}
	return nil
}

func (s *scriptedEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if err := s.next(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: []float32{0}, TotalTokens: 1}, nil
}

func (s *scriptedEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.batchSizes = append(s.batchSizes, len(texts))
	if err := s.next(); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

type singleEmbedder struct{ calls int }

func (s *singleEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	s.calls++
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}
