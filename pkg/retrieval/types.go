package retrieval

import (
	"context"

	"carecompanion-be/pkg/category"
)

// Snippet is a scored knowledge base passage returned to callers.
type Snippet struct {
	ID            string
	Text          string
	VectorScore   float64
	KeywordScore  float64
	CombinedScore float64
	Metadata      map[string]string
}

// IndexHit is a raw result from one of the underlying indexes.
type IndexHit struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]string
}

// VectorIndex searches by embedding similarity.
type VectorIndex interface {
	QueryVector(ctx context.Context, embedding []float32, limit int) ([]IndexHit, error)
}

// KeywordIndex searches by full-text relevance.
type KeywordIndex interface {
	QueryKeyword(ctx context.Context, query string, limit int) ([]IndexHit, error)
}

// Query carries everything the retriever needs for one request.
type Query struct {
	Text     string
	Category category.Category
	TopK     int
}
