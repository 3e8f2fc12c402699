package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"carecompanion-be/internal/dto"
	"carecompanion-be/internal/model"
	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/internal/repository/contract"
	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/events"
	pktNats "carecompanion-be/pkg/nats"
	"carecompanion-be/pkg/retrieval"
	"carecompanion-be/pkg/utils"
)

const (
	defaultSearchResults  = 5
	contentTypeOversample = 4
	searchCacheTTL        = 5 * time.Minute
)

type IKnowledgeService interface {
	Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error)
	AddDocument(ctx context.Context, req *dto.AddDocumentRequest) (*dto.AddDocumentResponse, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*contract.KnowledgeStats, error)
}

type knowledgeService struct {
	repo           contract.KnowledgeRepository
	retriever      *retrieval.Retriever
	publisher      IPublisherService
	eventPublisher *pktNats.Publisher
	cache          *redis.Client
	logger         logger.ILogger
}

func NewKnowledgeService(
	repo contract.KnowledgeRepository,
	retriever *retrieval.Retriever,
	publisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	cache *redis.Client,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		repo:           repo,
		retriever:      retriever,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		cache:          cache,
		logger:         log,
	}
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSearchResults
	}

	cacheKey := searchCacheKey(req.Query, req.Category, req.ContentType, maxResults)
	if cached := s.cachedSearch(ctx, cacheKey); cached != nil {
		cached.Cached = true
		return cached, nil
	}

	queryCategory := category.Category(req.Category)
	if !queryCategory.IsValid() {
		queryCategory = category.General
	}

	// The content type filter runs after retrieval, so oversample to keep
	// maxResults reachable when many top hits have a different type.
	topK := maxResults
	if req.ContentType != "" {
		topK = maxResults * contentTypeOversample
	}

	snippets, err := s.retriever.Retrieve(ctx, retrieval.Query{
		Text:     req.Query,
		Category: queryCategory,
		TopK:     topK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]dto.KnowledgeSearchResult, 0, maxResults)
	for _, snip := range snippets {
		if len(results) == maxResults {
			break
		}
		if req.ContentType != "" && snip.Metadata["content_type"] != req.ContentType {
			continue
		}
		excerpt := utils.TruncateRunes(snip.Text, 300)
		results = append(results, dto.KnowledgeSearchResult{
			DocumentId:    snip.ID,
			Title:         snip.Metadata["title"],
			ContentType:   snip.Metadata["content_type"],
			Category:      snip.Metadata["category"],
			Excerpt:       excerpt,
			VectorScore:   snip.VectorScore,
			KeywordScore:  snip.KeywordScore,
			CombinedScore: snip.CombinedScore,
			SourceURL:     snip.Metadata["source_url"],
		})
	}

	res := &dto.KnowledgeSearchResponse{
		Query:   req.Query,
		Results: results,
	}

	s.storeInCache(ctx, cacheKey, res)

	return res, nil
}

func (s *knowledgeService) AddDocument(ctx context.Context, req *dto.AddDocumentRequest) (*dto.AddDocumentResponse, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = model.ContentTypeMedicalArticle
	}

	var tags []byte
	if len(req.Tags) > 0 {
		var err error
		tags, err = json.Marshal(req.Tags)
		if err != nil {
			return nil, err
		}
	}

	doc := &model.KnowledgeDocument{
		Id:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		ContentType: contentType,
		Category:    req.Category,
		SourceURL:   req.SourceURL,
		Tags:        tags,
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	// Embedding happens asynchronously; the document is searchable by
	// keyword immediately and by vector once the consumer finishes.
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: doc.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue document for embedding: %w", err)
	}

	return &dto.AddDocumentResponse{
		DocumentId: doc.Id,
		Indexed:    false,
	}, nil
}

func (s *knowledgeService) GetDocument(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var tags []string
	if len(doc.Tags) > 0 {
		if err := json.Unmarshal(doc.Tags, &tags); err != nil {
			s.logger.Warn("knowledge", "malformed tags on document", map[string]interface{}{
				"document_id": doc.Id,
			})
		}
	}

	return &dto.DocumentResponse{
		DocumentId:  doc.Id,
		Title:       doc.Title,
		Content:     doc.Content,
		ContentType: doc.ContentType,
		Category:    doc.Category,
		SourceURL:   doc.SourceURL,
		Tags:        tags,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *knowledgeService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewDocumentDeleted(id.String())); err != nil {
			s.logger.Warn("knowledge", "failed to publish event", map[string]interface{}{
				"event": events.TypeDocumentDeleted,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *knowledgeService) Stats(ctx context.Context) (*contract.KnowledgeStats, error) {
	return s.repo.Stats(ctx)
}

// --- search result cache (best effort, degrades silently) ---

func searchCacheKey(query, cat, contentType string, maxResults int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", query, cat, contentType, maxResults)))
	return "knowledge:search:" + hex.EncodeToString(sum[:])
}

func (s *knowledgeService) cachedSearch(ctx context.Context, key string) *dto.KnowledgeSearchResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var res dto.KnowledgeSearchResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	return &res
}

func (s *knowledgeService) storeInCache(ctx context.Context, key string, res *dto.KnowledgeSearchResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, searchCacheTTL).Err(); err != nil {
		s.logger.Debug("knowledge", "search cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
