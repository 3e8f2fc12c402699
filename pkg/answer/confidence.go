package answer

import (
	"carecompanion-be/pkg/retrieval"
)

// noSourceConfidence is reported when the model answered from general
// knowledge only. Low by construction, never zero (zero is reserved for
// generation failure).
const noSourceConfidence = 0.2

const truncationPenalty = 0.75

// Confidence scores how well-supported an answer is. It is deterministic:
// more sources raise the ceiling, stronger retrieval scores fill it, and a
// truncated generation is discounted. The value rank-orders answers; it is
// not a calibrated probability.
func Confidence(sources []retrieval.Snippet, truncated bool) float64 {
	var conf float64
	if len(sources) == 0 {
		conf = noSourceConfidence
	} else {
		n := len(sources)
		if n > 4 {
			n = 4
		}
		ceiling := 0.5 + 0.1*float64(n)

		var total float64
		for _, s := range sources {
			total += s.CombinedScore
		}
		avg := total / float64(len(sources))
		if avg < 0 {
			avg = 0
		}
		if avg > 1 {
			avg = 1
		}

		conf = ceiling * avg
	}

	if truncated {
		conf *= truncationPenalty
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
