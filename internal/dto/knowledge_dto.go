package dto

import (
	"github.com/google/uuid"
)

type KnowledgeSearchRequest struct {
	Query       string `json:"query" validate:"required,min=1,max=1000"`
	Category    string `json:"category,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	MaxResults  int    `json:"max_results,omitempty" validate:"omitempty,min=1,max=20"`
}

type KnowledgeSearchResult struct {
	DocumentId    string  `json:"document_id"`
	Title         string  `json:"title"`
	ContentType   string  `json:"content_type"`
	Category      string  `json:"category,omitempty"`
	Excerpt       string  `json:"excerpt"`
	VectorScore   float64 `json:"vector_score"`
	KeywordScore  float64 `json:"keyword_score"`
	CombinedScore float64 `json:"combined_score"`
	SourceURL     string  `json:"source_url,omitempty"`
}

type KnowledgeSearchResponse struct {
	Query   string                  `json:"query"`
	Results []KnowledgeSearchResult `json:"results"`
	Cached  bool                    `json:"cached"`
}

type AddDocumentRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=500"`
	Content     string   `json:"content" validate:"required,min=1"`
	ContentType string   `json:"content_type,omitempty"`
	Category    string   `json:"category,omitempty"`
	SourceURL   string   `json:"source_url,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags,omitempty"`
}

type AddDocumentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Indexed    bool      `json:"indexed"` // false until the embed consumer finishes
}

type DocumentResponse struct {
	DocumentId  uuid.UUID `json:"document_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Category    string    `json:"category,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}
