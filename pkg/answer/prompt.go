package answer

import (
	"fmt"
	"strings"

	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/llm"
	"carecompanion-be/pkg/retrieval"
	"carecompanion-be/pkg/utils"
)

const systemPreamble = `You are a compassionate and knowledgeable healthcare companion specializing in breast cancer support. Your role is to provide accurate, empathetic, and helpful information to breast cancer patients and their caregivers.

Guidelines:
1. EMPATHY FIRST: acknowledge the emotional aspect of the patient's journey, use warm supportive language, and recognize that every patient's experience is unique.
2. ACCURATE INFORMATION: provide evidence-based information, cite the knowledge base sources when available, and be clear about what is general information versus specific medical advice.
3. SAFETY BOUNDARIES: NEVER provide specific treatment recommendations or medication dosages. ALWAYS encourage consulting with healthcare providers for medical decisions.
4. RESPONSE STRUCTURE: start by acknowledging the patient's concern, provide clear organized information, and end with supportive guidance and next steps.`

const maxSnippetChars = 500

// PromptBuilder assembles the generation prompt from the question, the
// retrieved passages, and recent conversation turns.
type PromptBuilder struct {
	query    string
	category category.Category
	sources  []retrieval.Snippet
	history  []llm.Message
}

func NewPromptBuilder(query string, cat category.Category, sources []retrieval.Snippet, history []llm.Message) *PromptBuilder {
	return &PromptBuilder{
		query:    query,
		category: cat,
		sources:  sources,
		history:  history,
	}
}

func (b *PromptBuilder) Build() string {
	var prompt strings.Builder

	b.writeKnowledgeContext(&prompt)
	b.writeConversationHistory(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *PromptBuilder) writeKnowledgeContext(prompt *strings.Builder) {
	prompt.WriteString("<knowledge_base_context>\n")
	if len(b.sources) == 0 {
		prompt.WriteString("No specific knowledge base sources available. Please provide general, evidence-based information.\n")
	} else {
		for i, source := range b.sources {
			text := source.Text
			if truncated := utils.TruncateRunes(text, maxSnippetChars); truncated != text {
				text = truncated + "..."
			}
			prompt.WriteString(fmt.Sprintf("Source %d", i+1))
			if title := source.Metadata["title"]; title != "" {
				prompt.WriteString(": " + title)
			}
			prompt.WriteString("\n")
			prompt.WriteString(text)
			prompt.WriteString("\n\n")
		}
	}
	prompt.WriteString("</knowledge_base_context>\n\n")

	if b.category != "" && b.category != category.General {
		prompt.WriteString(fmt.Sprintf("The question appears to be about: %s.\n\n", b.category.Label()))
	}
}

func (b *PromptBuilder) writeConversationHistory(prompt *strings.Builder) {
	prompt.WriteString("<conversation_history>\n")
	if len(b.history) == 0 {
		prompt.WriteString("No previous conversation.\n")
	} else {
		for _, msg := range b.history {
			speaker := "Assistant"
			if msg.Role == "user" {
				speaker = "Patient"
			}
			prompt.WriteString(fmt.Sprintf("%s: %s\n", speaker, msg.Content))
		}
	}
	prompt.WriteString("</conversation_history>\n\n")
}

func (b *PromptBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<current_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</current_question>\n\n")
	prompt.WriteString("Please provide a helpful, empathetic response:")
}
