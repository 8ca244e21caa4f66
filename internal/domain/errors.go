package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or missing query text.
	ErrInvalidQuery = errors.New("no query provided")
	// ErrInvalidEntityType signals an entity type other than all, business or event.
	ErrInvalidEntityType = errors.New("invalid entity type")
	// ErrRetrievalFailed signals that a collection search could not complete.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrMalformedDocument signals a document missing a required metadata key.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCollectionNotFound signals a missing vector index.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrTransient marks a failure worth retrying: rate limits, 5xx replies, dropped connections.
	ErrTransient = errors.New("transient failure")
)
