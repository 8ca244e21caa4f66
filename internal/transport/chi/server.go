package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/record"
	"github.com/kailas-cloud/concierge/internal/logger"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
)

// maxBodyBytes caps the search request body.
const maxBodyBytes = 64 << 10

// noQueryMessage is the client-facing text for a missing query.
const noQueryMessage = "No query provided"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the concierge HTTP API.
type Server struct {
	answers       Answerer
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(answers Answerer, health HealthReporter, logger *zap.Logger) *Server {
	s := &Server{
		answers: answers,
		health:  health,
		logger:  logger,
	}
	// Order matters: the first matching sentinel wins.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeBadRequest, noQueryMessage),
		sentinelHandler(domain.ErrInvalidEntityType, http.StatusBadRequest, ErrorCodeBadRequest,
			"type must be one of all, business, event"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbedding,
			domain.ErrEmbeddingProviderError.Error()),
		sentinelHandler(domain.ErrCollectionNotFound, http.StatusBadGateway, ErrorCodeNotFound,
			domain.ErrCollectionNotFound.Error()),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, ErrorCodeRetrievalFailed,
			domain.ErrRetrievalFailed.Error()),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}

	t, err := entity.Parse(req.Type)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.WithQueryUsage(r.Context())
	ans, err := s.answers.Ask(ctx, req.Query, t)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results := ans.Results
	if results == nil {
		results = []record.Record{}
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   ans.Query,
		Answer:  ans.Answer,
		Results: results,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Usage headers on /api/search responses.
const (
	headerEmbeddingTokens    = "X-Embedding-Tokens"
	headerCollectionSearches = "X-Collection-Searches"
)

// setUsageHeaders reports embedding cost once at least one collection was searched.
func setUsageHeaders(w http.ResponseWriter, u *domain.QueryUsage) {
	if u.Searches() == 0 {
		return
	}
	w.Header().Set(headerEmbeddingTokens, strconv.Itoa(u.Tokens()))
	w.Header().Set(headerCollectionSearches, strconv.Itoa(u.Searches()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.From(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
