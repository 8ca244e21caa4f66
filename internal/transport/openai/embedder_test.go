package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type vector struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingsBody struct {
	Object string   `json:"object"`
	Data   []vector `json:"data"`
	Model  string   `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

// fakeTEI serves /embeddings like an OpenAI-compatible text-embeddings-inference server.
// respond builds the reply from the decoded request.
func fakeTEI(t *testing.T, respond func(req embeddingsRequest) embeddingsBody) (*httptest.Server, *[]embeddingsRequest) {
	t.Helper()
	var seen []embeddingsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
			return
		case "/embeddings":
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(respond(req))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestEmbedder(baseURL string, dims int) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions: dims,
		Provider:   "tei",
		Logger:     zap.NewNop(),
	})
}

// echo returns one vector per input whose first component is its index.
func echo(tokens int) func(req embeddingsRequest) embeddingsBody {
	return func(req embeddingsRequest) embeddingsBody {
		body := embeddingsBody{Object: "list", Model: req.Model}
		for i := range req.Input {
			body.Data = append(body.Data, vector{Object: "embedding", Embedding: []float32{float32(i), 0.5}, Index: i})
		}
		body.Usage.PromptTokens = tokens
		body.Usage.TotalTokens = tokens
		return body
	}
}

func TestEmbed_SendsModelAndReturnsUsage(t *testing.T) {
	srv, seen := fakeTEI(t, echo(7))
	emb := newTestEmbedder(srv.URL, 384)

	res, err := emb.Embed(context.Background(), "jazz bars downtown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 || res.PromptTokens != 7 || res.TotalTokens != 7 {
		t.Errorf("unexpected result: %+v", res)
	}

	if len(*seen) != 1 {
		t.Fatalf("requests = %d, want 1", len(*seen))
	}
	req := (*seen)[0]
	if req.Model != "sentence-transformers/all-MiniLM-L6-v2" || req.Dimensions != 384 {
		t.Errorf("unexpected request: %+v", req)
	}
	if len(req.Input) != 1 || req.Input[0] != "jazz bars downtown" {
		t.Errorf("unexpected input: %v", req.Input)
	}
}

func TestEmbed_OmitsZeroDimensions(t *testing.T) {
	srv, seen := fakeTEI(t, echo(1))
	if _, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if (*seen)[0].Dimensions != 0 {
		t.Errorf("dimensions = %d, want omitted", (*seen)[0].Dimensions)
	}
}

func TestBatchEmbed_RestoresInputOrder(t *testing.T) {
	srv, seen := fakeTEI(t, func(req embeddingsRequest) embeddingsBody {
		body := echo(30)(req)
		// reversed
		for i, j := 0, len(body.Data)-1; i < j; i, j = i+1, j-1 {
			body.Data[i], body.Data[j] = body.Data[j], body.Data[i]
		}
		return body
	})
	emb := newTestEmbedder(srv.URL, 0)

	before := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("tei", "sentence-transformers/all-MiniLM-L6-v2", "total"))
	res, err := emb.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*seen) != 1 {
		t.Errorf("requests = %d, want a single call", len(*seen))
	}
	for i, v := range res.Embeddings {
		if v[0] != float32(i) {
			t.Errorf("embeddings[%d][0] = %v, want %d", i, v[0], i)
		}
	}
	if res.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", res.TotalTokens)
	}
	after := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("tei", "sentence-transformers/all-MiniLM-L6-v2", "total"))
	if after-before != 30 {
		t.Errorf("tokens metric grew by %v, want 30", after-before)
	}
}

func TestBatchEmbed_EmptyInputSkipsCall(t *testing.T) {
	srv, seen := fakeTEI(t, echo(1))

	res, err := newTestEmbedder(srv.URL, 0).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", res.Embeddings)
	}
	if len(*seen) != 0 {
		t.Errorf("requests = %d, want 0", len(*seen))
	}
}

func TestBatchEmbed_CountMismatch(t *testing.T) {
	srv, _ := fakeTEI(t, func(req embeddingsRequest) embeddingsBody {
		body := echo(5)(req)
		body.Data = body.Data[:1]
		return body
	})

	before := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "sentence-transformers/all-MiniLM-L6-v2", "count_mismatch"))
	_, err := newTestEmbedder(srv.URL, 0).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	after := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "sentence-transformers/all-MiniLM-L6-v2", "count_mismatch"))
	if after-before != 1 {
		t.Errorf("count_mismatch errors grew by %v, want 1", after-before)
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	srv, _ := fakeTEI(t, func(req embeddingsRequest) embeddingsBody {
		return embeddingsBody{Object: "list", Model: req.Model}
	})

	_, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbed_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
	}{
		{"openai rate limit", http.StatusTooManyRequests, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`, true},
		{"tei overloaded", http.StatusServiceUnavailable, `{"error":"Model is overloaded","error_type":"overloaded"}`, true},
		{"gateway detail", http.StatusBadGateway, `{"detail":"upstream unavailable"}`, true},
		{"input too long", http.StatusRequestEntityTooLarge, `{"error":"Input validation error: inputs must have less than 512 tokens","error_type":"validation"}`, false},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "x")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
			if got := errors.Is(err, domain.ErrTransient); got != tt.transient {
				t.Errorf("transient = %v, want %v (%v)", got, tt.transient, err)
			}
		})
	}
}

func TestEmbed_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestEmbedder(url, 0).Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) || !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected transient provider error, got %v", err)
	}
}

func TestEmbed_CanceledIsNotTransient(t *testing.T) {
	srv, _ := fakeTEI(t, echo(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEmbedder(srv.URL, 0).Embed(ctx, "x")
	if !errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected non-transient cancellation, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"upstream unavailable"}`, "upstream unavailable"},
		{`{"error":"Model is overloaded","error_type":"overloaded"}`, "Model is overloaded"},
		{`{"error":{"message":"nested"}}`, ""},
		{`not json`, ""},
	}
	for _, tt := range tests {
		if got := extractDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("extractDetail(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := fakeTEI(t, echo(1))
	if err := newTestEmbedder(srv.URL, 0).HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	down := newTestEmbedder("http://127.0.0.1:1", 0)
	if err := down.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unreachable provider")
	}
}
