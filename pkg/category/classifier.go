package category

import (
	"strings"
	"unicode"
)

// Category labels the intent of a patient query. Exactly one category is
// assigned per query; unrecognized queries fall back to General.
type Category string

const (
	Symptoms         Category = "symptoms"
	Treatment        Category = "treatment"
	Medication       Category = "medication"
	SideEffects      Category = "side_effects"
	Lifestyle        Category = "lifestyle"
	EmotionalSupport Category = "emotional_support"
	Nutrition        Category = "nutrition"
	FollowUpCare     Category = "follow_up_care"
	General          Category = "general"
)

// priority is the fixed tie-break order. When two categories score equal,
// the one listed first wins.
var priority = []Category{
	Symptoms,
	Treatment,
	Medication,
	SideEffects,
	Lifestyle,
	EmotionalSupport,
	Nutrition,
	FollowUpCare,
}

// keywords maps each category to the phrases that vote for it. Matching is
// word-boundary based, so "chemotherapy" does not trigger "chemo" or
// "therapy". The treatment set deliberately carries modality terms rather
// than the bare word "treatment": queries like "can I exercise while on
// treatment" are about daily life, not the treatment itself.
var keywords = map[Category][]string{
	Symptoms: {
		"symptom", "symptoms", "pain", "lump", "lumps", "discharge",
		"swelling", "tender", "tenderness", "ache", "aching", "fatigue", "tired",
	},
	Treatment: {
		"treatment plan", "treatment options", "surgery", "mastectomy",
		"lumpectomy", "radiation", "radiotherapy", "chemotherapy", "chemo",
		"hormone therapy", "targeted therapy", "reconstruction",
	},
	Medication: {
		"medicine", "medication", "medications", "drug", "drugs",
		"tamoxifen", "herceptin", "anastrozole", "dose", "dosage", "prescription",
	},
	SideEffects: {
		"side effect", "side effects", "nausea", "vomiting", "hair loss",
		"fatigue", "neuropathy", "reaction", "rash",
	},
	Lifestyle: {
		"exercise", "exercising", "activity", "active", "sleep", "work",
		"travel", "daily life", "routine", "smoking", "alcohol",
	},
	EmotionalSupport: {
		"scared", "afraid", "anxious", "anxiety", "depressed", "depression",
		"worried", "worry", "cope", "coping", "overwhelmed", "support group",
		"lonely", "fear", "feeling",
	},
	Nutrition: {
		"food", "foods", "eat", "eating", "diet", "nutrition", "appetite",
		"supplement", "supplements", "vitamin", "vitamins", "weight",
	},
	FollowUpCare: {
		"follow up", "followup", "checkup", "check up", "scan", "scans",
		"mammogram", "monitoring", "recurrence", "come back", "survivor",
		"surveillance",
	},
}

// All returns the full category set including General.
func All() []Category {
	out := make([]Category, 0, len(priority)+1)
	out = append(out, priority...)
	out = append(out, General)
	return out
}

// Label returns a human readable form, e.g. "follow up care".
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	if c == General {
		return true
	}
	for _, p := range priority {
		if c == p {
			return true
		}
	}
	return false
}

// Classify maps a free-text query to a category. Pure function: no I/O,
// never fails, same input always yields the same output.
func Classify(text string) Category {
	normalized := normalize(text)
	if normalized == "" {
		return General
	}

	// Pad so every keyword match is a whole-word match.
	padded := " " + normalized + " "

	best := General
	bestScore := 0
	for _, cat := range priority {
		score := 0
		for _, kw := range keywords[cat] {
			score += strings.Count(padded, " "+kw+" ")
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	return best
}

// normalize lowercases the text and replaces punctuation with spaces so
// "follow-up" and "follow up" score identically.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
