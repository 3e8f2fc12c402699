package embedding

import "context"

// Task types hint the provider what the vector will be used for. Providers
// that don't distinguish (e.g. Ollama) ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings.
// All vectors produced by one provider share a fixed dimension.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
