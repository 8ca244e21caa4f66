package chi

import "github.com/kailas-cloud/concierge/internal/domain/record"

// ErrorCode is the machine-readable error code of an API error.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest      ErrorCode = "bad_request"
	ErrorCodeUnauthorized    ErrorCode = "unauthorized"
	ErrorCodeRetrievalFailed ErrorCode = "retrieval_failed"
	ErrorCodeEmbedding       ErrorCode = "embedding_provider_error"
	ErrorCodeNotFound        ErrorCode = "collection_not_found"
	ErrorCodeInternal        ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Query   string          `json:"query"`
	Answer  string          `json:"answer"`
	Results []record.Record `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents map[string]int    `json:"documents,omitempty"`
}
