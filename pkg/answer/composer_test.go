package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/llm"
	"carecompanion-be/pkg/retrieval"
)

type fakeLLM struct {
	result     *llm.Result
	err        error
	lastOpts   llm.Options
	lastPrompt string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	opts := llm.Options{}
	for _, o := range options {
		o(&opts)
	}
	f.lastOpts = opts
	if len(history) > 0 {
		f.lastPrompt = history[len(history)-1].Content
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Result, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func TestComposeSuccess(t *testing.T) {
	provider := &fakeLLM{result: &llm.Result{Text: "Fatigue and nausea are common."}}
	composer := NewComposer(provider, DefaultConfig(), noopLogger{})

	sources := []retrieval.Snippet{
		{ID: "s1", Text: "Chemotherapy side effects overview.", CombinedScore: 0.8},
	}

	ans, err := composer.Compose(context.Background(), "What side effects should I expect?", category.SideEffects, sources, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != "Fatigue and nausea are common." {
		t.Errorf("unexpected answer text: %q", ans.Text)
	}
	if ans.Disclaimer == "" {
		t.Error("disclaimer must never be empty")
	}
	if ans.Confidence <= 0 || ans.Confidence > 1 {
		t.Errorf("confidence out of range: %v", ans.Confidence)
	}
	if provider.lastOpts.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", provider.lastOpts.Temperature)
	}
	if provider.lastOpts.MaxTokens != 1500 {
		t.Errorf("max tokens = %v, want 1500", provider.lastOpts.MaxTokens)
	}
}

func TestComposeGenerationFailure(t *testing.T) {
	provider := &fakeLLM{err: errors.New("model overloaded")}
	composer := NewComposer(provider, DefaultConfig(), noopLogger{})

	_, err := composer.Compose(context.Background(), "question", category.General, nil, nil)
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestComposeHistoryWindow(t *testing.T) {
	provider := &fakeLLM{result: &llm.Result{Text: "ok"}}
	config := DefaultConfig()
	config.HistoryWindow = 2
	composer := NewComposer(provider, config, noopLogger{})

	history := []llm.Message{
		{Role: "user", Content: "oldest question"},
		{Role: "assistant", Content: "oldest reply"},
		{Role: "user", Content: "recent question"},
		{Role: "assistant", Content: "recent reply"},
	}

	_, err := composer.Compose(context.Background(), "follow up", category.General, nil, history)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(provider.lastPrompt, "oldest question") {
		t.Error("prompt should not include turns beyond the window")
	}
	if !strings.Contains(provider.lastPrompt, "recent reply") {
		t.Error("prompt should include the most recent turns")
	}
}

func TestComposeEmptySourcesStillWellFormed(t *testing.T) {
	provider := &fakeLLM{result: &llm.Result{Text: "General guidance."}}
	composer := NewComposer(provider, DefaultConfig(), noopLogger{})

	ans, err := composer.Compose(context.Background(), "tell me about recovery", category.FollowUpCare, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ans.Disclaimer == "" {
		t.Error("disclaimer must be present without sources")
	}
	if ans.Confidence != noSourceConfidence {
		t.Errorf("confidence = %v, want %v for sourceless answer", ans.Confidence, noSourceConfidence)
	}
}

func TestFallback(t *testing.T) {
	ans := Fallback(category.Medication)
	if ans.Text != FallbackText {
		t.Errorf("fallback text = %q", ans.Text)
	}
	if ans.Confidence != 0 {
		t.Errorf("fallback confidence = %v, want 0", ans.Confidence)
	}
	if len(ans.Sources) != 0 {
		t.Error("fallback must carry no sources")
	}
	if ans.Disclaimer == "" {
		t.Error("fallback must carry the disclaimer")
	}
}

func TestDisclaimerNonEmptyForAllCategories(t *testing.T) {
	for _, cat := range category.All() {
		if Disclaimer(cat) == "" {
			t.Errorf("empty disclaimer for %s", cat)
		}
	}
	if Disclaimer(category.General) == "" {
		t.Error("empty disclaimer for general")
	}
}

func TestConfidenceProperties(t *testing.T) {
	mk := func(scores ...float64) []retrieval.Snippet {
		out := make([]retrieval.Snippet, len(scores))
		for i, s := range scores {
			out[i] = retrieval.Snippet{CombinedScore: s}
		}
		return out
	}

	// Deterministic.
	a := Confidence(mk(0.8, 0.6), false)
	b := Confidence(mk(0.8, 0.6), false)
	if a != b {
		t.Errorf("not deterministic: %v vs %v", a, b)
	}

	// More sources at the same score never lowers confidence.
	if Confidence(mk(0.8), false) > Confidence(mk(0.8, 0.8), false) {
		t.Error("additional equal-quality source lowered confidence")
	}

	// Higher scores mean higher confidence.
	if Confidence(mk(0.5, 0.5), false) >= Confidence(mk(0.9, 0.9), false) {
		t.Error("stronger retrieval scores should raise confidence")
	}

	// Truncation is a penalty.
	if Confidence(mk(0.8), true) >= Confidence(mk(0.8), false) {
		t.Error("truncated generation should score lower")
	}

	// Bounds.
	for _, c := range []float64{
		Confidence(nil, false),
		Confidence(nil, true),
		Confidence(mk(1.0, 1.0, 1.0, 1.0, 1.0), false),
	} {
		if c < 0 || c > 1 {
			t.Errorf("confidence out of [0,1]: %v", c)
		}
	}
}

func TestPromptBuilderContents(t *testing.T) {
	sources := []retrieval.Snippet{
		{ID: "s1", Text: "Radiation therapy uses high-energy rays.", Metadata: map[string]string{"title": "Radiation Basics"}},
	}
	history := []llm.Message{
		{Role: "user", Content: "When does radiation start?"},
		{Role: "assistant", Content: "Usually after surgery."},
	}

	prompt := NewPromptBuilder("How long does it last?", category.Treatment, sources, history).Build()

	for _, want := range []string{
		"Radiation Basics",
		"Radiation therapy uses high-energy rays.",
		"Patient: When does radiation start?",
		"Assistant: Usually after surgery.",
		"How long does it last?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPromptBuilderNoSources(t *testing.T) {
	prompt := NewPromptBuilder("general question", category.General, nil, nil).Build()
	if !strings.Contains(prompt, "No specific knowledge base sources available") {
		t.Error("prompt should state that no sources are available")
	}
	if !strings.Contains(prompt, "No previous conversation.") {
		t.Error("prompt should state that there is no history")
	}
}
