package retrieval

import (
	"context"
	"fmt"

	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/pkg/embedding"
)

// Retriever runs the hybrid search: embed the query, fan out to the vector
// and keyword indexes, merge and re-rank.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorIndex       VectorIndex
	keywordIndex      KeywordIndex
	config            Config
	logger            logger.ILogger
}

func NewRetriever(
	embeddingProvider embedding.EmbeddingProvider,
	vectorIndex VectorIndex,
	keywordIndex KeywordIndex,
	config Config,
	log logger.ILogger,
) (*Retriever, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		vectorIndex:       vectorIndex,
		keywordIndex:      keywordIndex,
		config:            config,
		logger:            log,
	}, nil
}

// Retrieve returns the top passages for the query, ranked by combined score.
func (r *Retriever) Retrieve(ctx context.Context, query Query) ([]Snippet, error) {
	embeddingRes, err := r.embeddingProvider.Generate(ctx, query.Text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	limit := r.config.CandidateLimit
	if limit <= 0 {
		limit = r.config.TopK
	}

	vectorHits, vErr := r.vectorIndex.QueryVector(ctx, embeddingRes.Embedding.Values, limit)
	keywordHits, kErr := r.keywordIndex.QueryKeyword(ctx, query.Text, limit)

	if vErr != nil && kErr != nil {
		return nil, fmt.Errorf("%w: vector: %v, keyword: %v", ErrRetrievalUnavailable, vErr, kErr)
	}
	if vErr != nil {
		r.logger.Warn("retrieval", "vector index unavailable, keyword results only", map[string]interface{}{"error": vErr.Error()})
	}
	if kErr != nil {
		r.logger.Warn("retrieval", "keyword index unavailable, vector results only", map[string]interface{}{"error": kErr.Error()})
	}

	config := r.config
	if query.TopK > 0 {
		config.TopK = query.TopK
	}

	merged := Merge(vectorHits, keywordHits, query.Category, config)

	r.logger.Debug("retrieval", "hybrid search complete", map[string]interface{}{
		"vector_hits":  len(vectorHits),
		"keyword_hits": len(keywordHits),
		"returned":     len(merged),
	})

	return merged, nil
}
