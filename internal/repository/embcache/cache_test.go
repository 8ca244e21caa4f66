package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/db"
	"github.com/kailas-cloud/concierge/internal/domain"
)

func newTestCache(t *testing.T, next domain.Embedder) (*Embedder, *memKV, *prometheus.CounterVec) {
	t.Helper()
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cache_total"}, []string{"result"})
	kv := newMemKV()
	e := New(next, kv, Config{Prefix: "concierge:emb:", Model: "minilm", TTL: time.Hour}, zap.NewNop()).
		WithCounter(cv)
	return e, kv, cv
}

func TestEmbed_MissThenHit(t *testing.T) {
	next := &mockEmbedder{}
	e, kv, cv := newTestCache(t, next)
	ctx := context.Background()

	first, err := e.Embed(ctx, "jazz bars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 2 {
		t.Errorf("miss should report provider tokens, got %d", first.TotalTokens)
	}
	if kv.ttls[e.Key("jazz bars")] != time.Hour {
		t.Error("vector should be stored with the configured TTL")
	}

	second, err := e.Embed(ctx, "jazz bars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("provider calls = %d, want 1", next.calls)
	}
	if second.TotalTokens != 0 || len(second.Embedding) != 2 || second.Embedding[0] != first.Embedding[0] {
		t.Errorf("unexpected hit result: %+v", second)
	}
	if testutil.ToFloat64(cv.WithLabelValues(outcomeMiss)) != 1 || testutil.ToFloat64(cv.WithLabelValues(outcomeHit)) != 1 {
		t.Error("expected one miss and one hit")
	}
}

func TestKey_SeparatesModels(t *testing.T) {
	a := New(nil, nil, Config{Prefix: "p:", Model: "a"}, zap.NewNop())
	b := New(nil, nil, Config{Prefix: "p:", Model: "b"}, zap.NewNop())
	if a.Key("x") == b.Key("x") {
		t.Error("keys of different models must differ")
	}
	if !strings.HasPrefix(a.Key("x"), "p:a:") {
		t.Errorf("unexpected key layout %q", a.Key("x"))
	}
	if a.Key("x") == a.Key("y") {
		t.Error("keys of different texts must differ")
	}
}

func TestEmbed_ReadErrorFallsThrough(t *testing.T) {
	next := &mockEmbedder{}
	e, kv, cv := newTestCache(t, next)
	kv.getErr = errors.New("connection reset")

	if _, err := e.Embed(context.Background(), "tacos"); err != nil {
		t.Fatalf("cache failure must not fail the embedding: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("provider calls = %d, want 1", next.calls)
	}
	if testutil.ToFloat64(cv.WithLabelValues(outcomeError)) != 1 {
		t.Error("expected the read error to be counted")
	}
}

func TestEmbed_CorruptValueIsReplaced(t *testing.T) {
	next := &mockEmbedder{}
	e, kv, _ := newTestCache(t, next)
	key := e.Key("tacos")
	kv.data[key] = []byte{1, 2, 3}

	if _, err := e.Embed(context.Background(), "tacos"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Error("corrupt value should be treated as a miss")
	}
	if vec, err := db.DecodeVector(kv.data[key]); err != nil || len(vec) != 2 {
		t.Errorf("corrupt value should be overwritten, got %v %v", vec, err)
	}
}

func TestEmbed_WriteErrorIgnored(t *testing.T) {
	e, kv, _ := newTestCache(t, &mockEmbedder{})
	kv.setErr = errors.New("readonly replica")
	if _, err := e.Embed(context.Background(), "tacos"); err != nil {
		t.Fatalf("write failure must not fail the embedding: %v", err)
	}
}

func TestEmbed_ProviderError(t *testing.T) {
	e, kv, _ := newTestCache(t, &mockEmbedder{err: domain.ErrEmbeddingProviderError})
	_, err := e.Embed(context.Background(), "tacos")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("nothing should be cached on failure")
	}
}

func TestBatchEmbed_MixedAndDuplicates(t *testing.T) {
	next := &mockEmbedder{}
	e, kv, _ := newTestCache(t, next)
	kv.data[e.Key("cached")] = db.EncodeVector([]float32{9, 9})

	res, err := e.BatchEmbed(context.Background(), []string{"a", "cached", "b", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(next.batches) != 1 || strings.Join(next.batches[0], ",") != "a,b" {
		t.Fatalf("provider should see distinct misses once, got %v", next.batches)
	}
	if len(res.Embeddings) != 4 {
		t.Fatalf("embeddings = %d, want 4", len(res.Embeddings))
	}
	if res.Embeddings[1][0] != 9 {
		t.Errorf("cached vector not used: %v", res.Embeddings[1])
	}
	if res.Embeddings[0][1] != res.Embeddings[3][1] || res.Embeddings[0][1] == res.Embeddings[2][1] {
		t.Errorf("duplicates should share a vector: %v", res.Embeddings)
	}
	if res.TotalTokens != 4 {
		t.Errorf("tokens = %d, want 4", res.TotalTokens)
	}
	if _, ok := kv.data[e.Key("b")]; !ok {
		t.Error("misses should be stored")
	}
}

func TestBatchEmbed_AllCached(t *testing.T) {
	next := &mockEmbedder{}
	e, kv, _ := newTestCache(t, next)
	kv.data[e.Key("a")] = db.EncodeVector([]float32{1})
	kv.data[e.Key("b")] = db.EncodeVector([]float32{2})

	res, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(next.batches) != 0 {
		t.Error("provider should not be called")
	}
	if res.Embeddings[0][0] != 1 || res.Embeddings[1][0] != 2 || res.TotalTokens != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestBatchEmbed_CountMismatch(t *testing.T) {
	next := &mockEmbedder{short: true}
	e, _, _ := newTestCache(t, next)
	_, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	e, _, _ := newTestCache(t, &mockEmbedder{})
	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
}

// --- Mocks ---

// mockEmbedder returns [len(text), n] for the n-th text it embeds, two tokens each.
type mockEmbedder struct {
	err     error
	short   bool
	calls   int
	batches [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	m.calls++
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), float32(m.calls)}, PromptTokens: 2, TotalTokens: 2}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.batches = append(m.batches, append([]string(nil), texts...))
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(texts[i])), float32(i + 1)}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: 2 * n, TotalTokens: 2 * n}, nil
}

type memKV struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
