package answer

import (
	"context"
	"errors"
	"fmt"

	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/llm"
	"carecompanion-be/pkg/retrieval"
)

// ErrGenerationUnavailable means the language model could not produce an
// answer. Callers should return Fallback rather than an error page.
var ErrGenerationUnavailable = errors.New("answer generation unavailable")

// Answer is a fully composed assistant reply.
type Answer struct {
	Text       string
	Category   category.Category
	Sources    []retrieval.Snippet
	Confidence float64
	Disclaimer string
}

// Config tunes generation. Low temperature keeps medical information
// consistent across retries.
type Config struct {
	Temperature   float64
	MaxTokens     int
	HistoryWindow int // how many prior turns to include in the prompt
}

func DefaultConfig() Config {
	return Config{
		Temperature:   0.3,
		MaxTokens:     1500,
		HistoryWindow: 6,
	}
}

// Composer turns a question plus retrieved passages into a safe,
// disclaimer-bearing answer.
type Composer struct {
	llmProvider llm.LLMProvider
	config      Config
	logger      logger.ILogger
}

func NewComposer(llmProvider llm.LLMProvider, config Config, log logger.ILogger) *Composer {
	return &Composer{
		llmProvider: llmProvider,
		config:      config,
		logger:      log,
	}
}

// Compose generates an answer for the query. History is expected
// oldest-first; only the most recent HistoryWindow turns are used.
func (c *Composer) Compose(
	ctx context.Context,
	query string,
	cat category.Category,
	sources []retrieval.Snippet,
	history []llm.Message,
) (*Answer, error) {
	window := history
	if c.config.HistoryWindow > 0 && len(window) > c.config.HistoryWindow {
		window = window[len(window)-c.config.HistoryWindow:]
	}

	promptText := NewPromptBuilder(query, cat, sources, window).Build()

	messages := []llm.Message{
		{Role: "system", Content: systemPreamble},
		{Role: "user", Content: promptText},
	}

	result, err := c.llmProvider.Chat(
		ctx,
		messages,
		llm.WithTemperature(c.config.Temperature),
		llm.WithMaxTokens(c.config.MaxTokens),
	)
	if err != nil {
		c.logger.Error("answer", "generation failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	if result.Truncated {
		c.logger.Warn("answer", "generation hit the token limit", map[string]interface{}{"max_tokens": c.config.MaxTokens})
	}

	return &Answer{
		Text:       result.Text,
		Category:   cat,
		Sources:    sources,
		Confidence: Confidence(sources, result.Truncated),
		Disclaimer: Disclaimer(cat),
	}, nil
}

// Fallback returns the safe answer used when generation fails. It carries
// the same disclaimer as a normal answer, empty sources, and zero
// confidence.
func Fallback(cat category.Category) *Answer {
	return &Answer{
		Text:       FallbackText,
		Category:   cat,
		Sources:    nil,
		Confidence: 0,
		Disclaimer: Disclaimer(cat),
	}
}
