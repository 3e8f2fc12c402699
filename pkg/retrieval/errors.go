package retrieval

import "errors"

var (
	// ErrEmbeddingUnavailable means the query could not be embedded. Callers
	// should surface this; retrieval cannot proceed without a query vector.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrRetrievalUnavailable means the knowledge indexes could not be
	// queried. Callers may degrade to answering without sources.
	ErrRetrievalUnavailable = errors.New("knowledge retrieval unavailable")

	// ErrInvalidWeightConfiguration means the hybrid weights are malformed.
	// Raised at construction time, never per request.
	ErrInvalidWeightConfiguration = errors.New("invalid retrieval weight configuration")
)
