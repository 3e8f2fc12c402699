package service

import (
	"context"
	"fmt"
	"testing"

	"carecompanion-be/internal/dto"
	"carecompanion-be/pkg/embedding"
	"carecompanion-be/pkg/retrieval"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeVectorIndex struct {
	hits []retrieval.IndexHit
}

func (f *fakeVectorIndex) QueryVector(ctx context.Context, vec []float32, limit int) ([]retrieval.IndexHit, error) {
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type fakeKeywordIndex struct{}

func (fakeKeywordIndex) QueryKeyword(ctx context.Context, query string, limit int) ([]retrieval.IndexHit, error) {
	return nil, nil
}

func newSearchService(t *testing.T, hits []retrieval.IndexHit) IKnowledgeService {
	t.Helper()
	retriever, err := retrieval.NewRetriever(
		fakeEmbedder{},
		&fakeVectorIndex{hits: hits},
		fakeKeywordIndex{},
		retrieval.DefaultConfig(),
		noopLogger{},
	)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	return NewKnowledgeService(nil, retriever, nil, nil, nil, noopLogger{})
}

func TestSearchContentTypeFilterReachesDeeperHits(t *testing.T) {
	// Top-ranked hits are all FAQs; the guides the filter wants sit
	// below the requested result count.
	hits := make([]retrieval.IndexHit, 0, 8)
	for i := 0; i < 6; i++ {
		hits = append(hits, retrieval.IndexHit{
			ID:       fmt.Sprintf("faq-%d", i),
			Text:     "faq passage",
			Score:    0.9 - float64(i)*0.01,
			Metadata: map[string]string{"content_type": "faq"},
		})
	}
	for i := 0; i < 2; i++ {
		hits = append(hits, retrieval.IndexHit{
			ID:       fmt.Sprintf("guide-%d", i),
			Text:     "guide passage",
			Score:    0.8 - float64(i)*0.01,
			Metadata: map[string]string{"content_type": "patient_guide"},
		})
	}

	svc := newSearchService(t, hits)

	res, err := svc.Search(context.Background(), &dto.KnowledgeSearchRequest{
		Query:       "what should I expect",
		ContentType: "patient_guide",
		MaxResults:  2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(res.Results) != 2 {
		t.Fatalf("expected 2 filtered results, got %d", len(res.Results))
	}
	for _, r := range res.Results {
		if r.ContentType != "patient_guide" {
			t.Errorf("result %s has content type %s", r.DocumentId, r.ContentType)
		}
	}
}

func TestSearchFilteredResultsCappedAtMaxResults(t *testing.T) {
	hits := make([]retrieval.IndexHit, 0, 6)
	for i := 0; i < 6; i++ {
		hits = append(hits, retrieval.IndexHit{
			ID:       fmt.Sprintf("faq-%d", i),
			Text:     "faq passage",
			Score:    0.9 - float64(i)*0.01,
			Metadata: map[string]string{"content_type": "faq"},
		})
	}

	svc := newSearchService(t, hits)

	res, err := svc.Search(context.Background(), &dto.KnowledgeSearchRequest{
		Query:       "mammogram frequency",
		ContentType: "faq",
		MaxResults:  3,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(res.Results) != 3 {
		t.Errorf("expected results capped at 3, got %d", len(res.Results))
	}
}
