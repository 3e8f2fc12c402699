package contract

import (
	"context"

	"github.com/google/uuid"

	"carecompanion-be/internal/model"
	"carecompanion-be/pkg/retrieval"
)

// KnowledgeStats summarizes the knowledge base for the stats endpoint.
type KnowledgeStats struct {
	DocumentCount  int64            `json:"document_count"`
	EmbeddingCount int64            `json:"embedding_count"`
	ByContentType  map[string]int64 `json:"by_content_type"`
	ByCategory     map[string]int64 `json:"by_category"`
}

// KnowledgeRepository persists documents and their embeddings and serves
// both sides of the hybrid search.
type KnowledgeRepository interface {
	retrieval.VectorIndex
	retrieval.KeywordIndex

	CreateDocument(ctx context.Context, doc *model.KnowledgeDocument) error
	GetDocument(ctx context.Context, id uuid.UUID) (*model.KnowledgeDocument, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*KnowledgeStats, error)

	// ReplaceEmbeddings swaps a document's chunk embeddings in one
	// transaction so searches never observe a half-indexed document.
	ReplaceEmbeddings(ctx context.Context, documentId uuid.UUID, embeddings []*model.DocumentEmbedding) error
}
