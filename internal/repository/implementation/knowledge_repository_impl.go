package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"carecompanion-be/internal/model"
	"carecompanion-be/internal/repository/contract"
	"carecompanion-be/pkg/retrieval"
)

type KnowledgeRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{db: db}
}

func (r *KnowledgeRepositoryImpl) CreateDocument(ctx context.Context, doc *model.KnowledgeDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *KnowledgeRepositoryImpl) GetDocument(ctx context.Context, id uuid.UUID) (*model.KnowledgeDocument, error) {
	var doc model.KnowledgeDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *KnowledgeRepositoryImpl) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentEmbedding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.KnowledgeDocument{}, "id = ?", id).Error
	})
}

func (r *KnowledgeRepositoryImpl) ReplaceEmbeddings(ctx context.Context, documentId uuid.UUID, embeddings []*model.DocumentEmbedding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("document_id = ?", documentId).Delete(&model.DocumentEmbedding{}).Error; err != nil {
			return err
		}
		if len(embeddings) == 0 {
			return nil
		}
		return tx.Create(embeddings).Error
	})
}

func (r *KnowledgeRepositoryImpl) Stats(ctx context.Context) (*contract.KnowledgeStats, error) {
	stats := &contract.KnowledgeStats{
		ByContentType: make(map[string]int64),
		ByCategory:    make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&model.KnowledgeDocument{}).Count(&stats.DocumentCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.DocumentEmbedding{}).Count(&stats.EmbeddingCount).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byType []bucket
	err := r.db.WithContext(ctx).Model(&model.KnowledgeDocument{}).
		Select("content_type as key, count(*) as count").
		Group("content_type").
		Scan(&byType).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byType {
		stats.ByContentType[b.Key] = b.Count
	}

	var byCategory []bucket
	err = r.db.WithContext(ctx).Model(&model.KnowledgeDocument{}).
		Select("category as key, count(*) as count").
		Where("category <> ''").
		Group("category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	return stats, nil
}

// QueryVector searches chunk embeddings by cosine similarity and keeps the
// best chunk per document so the merger can deduplicate by document id.
func (r *KnowledgeRepositoryImpl) QueryVector(ctx context.Context, embedding []float32, limit int) ([]retrieval.IndexHit, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type row struct {
		DocumentId  uuid.UUID
		Chunk       string
		Title       string
		Category    string
		ContentType string
		SourceURL   string
		Similarity  float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("document_embeddings").
		Select(`document_embeddings.document_id,
			document_embeddings.chunk,
			knowledge_documents.title,
			knowledge_documents.category,
			knowledge_documents.content_type,
			knowledge_documents.source_url,
			1 - (embedding_value <=> ?) as similarity`, queryVector).
		Joins("JOIN knowledge_documents ON knowledge_documents.id = document_embeddings.document_id").
		Where("document_embeddings.deleted_at IS NULL").
		Where("knowledge_documents.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit * 3). // oversample, chunks collapse onto documents below
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]retrieval.IndexHit, 0, limit)
	seen := make(map[uuid.UUID]bool)
	for _, res := range rows {
		if seen[res.DocumentId] {
			continue
		}
		seen[res.DocumentId] = true
		hits = append(hits, retrieval.IndexHit{
			ID:    res.DocumentId.String(),
			Text:  res.Chunk,
			Score: res.Similarity,
			Metadata: map[string]string{
				"title":        res.Title,
				"category":     res.Category,
				"content_type": res.ContentType,
				"source_url":   res.SourceURL,
			},
		})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// QueryKeyword runs Postgres full-text search over documents. ts_rank_cd
// with normalization 32 maps the rank into [0,1) so it can be blended with
// cosine similarity.
func (r *KnowledgeRepositoryImpl) QueryKeyword(ctx context.Context, query string, limit int) ([]retrieval.IndexHit, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		Id          uuid.UUID
		Title       string
		Category    string
		ContentType string
		SourceURL   string
		Excerpt     string
		Rank        float64
	}
	var rows []row

	tsVector := "to_tsvector('english', title || ' ' || content)"
	tsQuery := "plainto_tsquery('english', ?)"

	err := r.db.WithContext(ctx).
		Table("knowledge_documents").
		Select(`id, title, category, content_type, source_url,
			left(content, 500) as excerpt,
			ts_rank_cd(`+tsVector+`, `+tsQuery+`, 32) as rank`, query).
		Where(tsVector+" @@ "+tsQuery, query).
		Where("deleted_at IS NULL").
		Order("rank DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]retrieval.IndexHit, len(rows))
	for i, res := range rows {
		hits[i] = retrieval.IndexHit{
			ID:    res.Id.String(),
			Text:  res.Excerpt,
			Score: res.Rank,
			Metadata: map[string]string{
				"title":        res.Title,
				"category":     res.Category,
				"content_type": res.ContentType,
				"source_url":   res.SourceURL,
			},
		}
	}
	return hits, nil
}
