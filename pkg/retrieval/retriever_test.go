package retrieval

import (
	"context"
	"errors"
	"testing"

	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/embedding"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeVectorIndex struct {
	hits []IndexHit
	err  error
}

func (f *fakeVectorIndex) QueryVector(ctx context.Context, emb []float32, limit int) ([]IndexHit, error) {
	return f.hits, f.err
}

type fakeKeywordIndex struct {
	hits []IndexHit
	err  error
}

func (f *fakeKeywordIndex) QueryKeyword(ctx context.Context, query string, limit int) ([]IndexHit, error) {
	return f.hits, f.err
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func TestNewRetrieverRejectsBadWeights(t *testing.T) {
	config := DefaultConfig()
	config.VectorWeight = 0.6
	config.KeywordWeight = 0.6

	_, err := NewRetriever(&fakeEmbedder{}, &fakeVectorIndex{}, &fakeKeywordIndex{}, config, noopLogger{})
	if !errors.Is(err, ErrInvalidWeightConfiguration) {
		t.Errorf("expected ErrInvalidWeightConfiguration, got %v", err)
	}
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("gateway timeout")}
	r, err := NewRetriever(embedder, &fakeVectorIndex{}, &fakeKeywordIndex{}, DefaultConfig(), noopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Retrieve(context.Background(), Query{Text: "what is tamoxifen"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestRetrieveBothIndexesDown(t *testing.T) {
	r, err := NewRetriever(
		&fakeEmbedder{},
		&fakeVectorIndex{err: errors.New("db down")},
		&fakeKeywordIndex{err: errors.New("db down")},
		DefaultConfig(),
		noopLogger{},
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Retrieve(context.Background(), Query{Text: "side effects"})
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Errorf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestRetrieveDegradesWhenOneIndexFails(t *testing.T) {
	vector := &fakeVectorIndex{hits: []IndexHit{{ID: "v1", Text: "vector passage", Score: 0.9}}}
	keyword := &fakeKeywordIndex{err: errors.New("fts unavailable")}

	r, err := NewRetriever(&fakeEmbedder{}, vector, keyword, DefaultConfig(), noopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := r.Retrieve(context.Background(), Query{Text: "radiation schedule"})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(snippets) != 1 || snippets[0].ID != "v1" {
		t.Errorf("expected vector-only results, got %+v", snippets)
	}
}

func TestRetrieveHybridRanking(t *testing.T) {
	vector := &fakeVectorIndex{hits: []IndexHit{
		{ID: "shared", Text: "both indexes", Score: 0.9},
		{ID: "vec-only", Text: "vector only", Score: 0.85},
	}}
	keyword := &fakeKeywordIndex{hits: []IndexHit{
		{ID: "shared", Text: "both indexes", Score: 0.4},
		{ID: "kw-only", Text: "keyword only", Score: 0.95},
	}}

	r, err := NewRetriever(&fakeEmbedder{}, vector, keyword, DefaultConfig(), noopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := r.Retrieve(context.Background(), Query{Text: "chemo nausea", Category: category.SideEffects})
	if err != nil {
		t.Fatal(err)
	}

	// shared: 0.7*0.9 + 0.3*0.4 = 0.75
	// vec-only: 0.7*0.85 = 0.595
	// kw-only: 0.3*0.95 = 0.285
	wantOrder := []string{"shared", "vec-only", "kw-only"}
	if len(snippets) != len(wantOrder) {
		t.Fatalf("got %d snippets, want %d", len(snippets), len(wantOrder))
	}
	for i, want := range wantOrder {
		if snippets[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, snippets[i].ID, want)
		}
	}
}

func TestRetrieveRespectsPerQueryTopK(t *testing.T) {
	vector := &fakeVectorIndex{hits: []IndexHit{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.8},
		{ID: "c", Score: 0.7},
	}}

	r, err := NewRetriever(&fakeEmbedder{}, vector, &fakeKeywordIndex{}, DefaultConfig(), noopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := r.Retrieve(context.Background(), Query{Text: "mammogram", TopK: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(snippets) != 1 || snippets[0].ID != "a" {
		t.Errorf("expected single best snippet, got %+v", snippets)
	}
}
