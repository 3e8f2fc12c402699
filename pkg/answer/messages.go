package answer

import (
	"carecompanion-be/pkg/category"
)

const baseDisclaimer = "This information is for educational purposes only and should not replace professional medical advice. Please consult your healthcare provider for personalized guidance."

// FallbackText is returned when generation fails. It must read like a
// normal assistant turn, never a raw error.
const FallbackText = "I'm sorry, I'm having trouble putting together a response right now. Please try again in a moment. If you have an urgent medical concern, please contact your healthcare team directly."

// perCategory adds a stronger caution on top of the base text where the
// stakes are higher.
var perCategory = map[category.Category]string{
	category.Medication: " Never start, stop, or change a medication or its dose without talking to your care team.",
	category.Treatment:  " Treatment decisions should always be made together with your oncology team.",
	category.Symptoms:   " If you notice a new or worsening symptom, contact your healthcare provider promptly.",
}

// Disclaimer returns the safety notice attached to every answer. It is
// non-empty for every category.
func Disclaimer(cat category.Category) string {
	return baseDisclaimer + perCategory[cat]
}
