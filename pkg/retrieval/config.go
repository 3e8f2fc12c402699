package retrieval

import (
	"fmt"
	"math"
)

// Config encapsulates hybrid search parameters.
type Config struct {
	VectorWeight   float64
	KeywordWeight  float64
	TopK           int
	CandidateLimit int // how many hits to pull from each index before merging
	CategoryBoost  float64
}

// DefaultConfig returns the default hybrid search configuration.
func DefaultConfig() Config {
	return Config{
		VectorWeight:   0.7,
		KeywordWeight:  0.3,
		TopK:           5,
		CandidateLimit: 20,
		CategoryBoost:  0.05,
	}
}

const weightTolerance = 1e-9

// Validate rejects weight configurations that would silently skew ranking.
func (c Config) Validate() error {
	if c.VectorWeight < 0 || c.VectorWeight > 1 {
		return fmt.Errorf("%w: vector weight %v out of [0,1]", ErrInvalidWeightConfiguration, c.VectorWeight)
	}
	if c.KeywordWeight < 0 || c.KeywordWeight > 1 {
		return fmt.Errorf("%w: keyword weight %v out of [0,1]", ErrInvalidWeightConfiguration, c.KeywordWeight)
	}
	if math.Abs(c.VectorWeight+c.KeywordWeight-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights %v + %v must sum to 1.0", ErrInvalidWeightConfiguration, c.VectorWeight, c.KeywordWeight)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidWeightConfiguration, c.TopK)
	}
	return nil
}
