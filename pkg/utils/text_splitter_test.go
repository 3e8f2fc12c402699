package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	// 200 runes of a 2-byte character; a byte slice at 300 would land
	// mid-rune.
	text := strings.Repeat("é", 200)

	truncated := TruncateRunes(text, 150)

	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, 150, utf8.RuneCountInString(truncated))
}

func TestTruncateRunesShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 10))
	assert.Equal(t, "", TruncateRunes("anything", 0))
}

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 100, 20)

	assert.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitTextChunkSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	// step = 80, so chunks start at 0, 80, 160
	assert.Len(t, chunks, 3)
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.Len(t, chunk, 100, "chunk %d should be full size", i)
	}
	assert.Len(t, chunks[len(chunks)-1], 90)
}

func TestSplitTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := strings.Repeat("x", 80) + strings.Repeat("y", 80)
	chunks := SplitText(text, 100, 20)

	assert.Len(t, chunks, 2)
	// The tail of the first chunk reappears at the head of the second.
	assert.Equal(t, chunks[0][80:], chunks[1][:20])
}

func TestSplitTextOverlapLargerThanChunkSize(t *testing.T) {
	text := strings.Repeat("a", 300)
	chunks := SplitText(text, 100, 150)

	// Degenerate overlap falls back to non-overlapping chunks.
	assert.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitTextMultibyteSafe(t *testing.T) {
	text := strings.Repeat("ü", 120)
	chunks := SplitText(text, 100, 20)

	for i, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk, "ü"), "chunk %d split inside a rune", i)
	}
}
