package rag

import (
	"strings"
	"testing"
)

func TestSplitTextEmpty(t *testing.T) {
	if got := SplitText("", 100, 20); got != nil {
		t.Errorf("SplitText(\"\") = %v, want nil", got)
	}
}

func TestSplitTextShortInput(t *testing.T) {
	got := SplitText("short text", 100, 20)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("short input must come back as a single chunk, got %v", got)
	}
}

func TestSplitTextChunksAndOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 chars
	chunks := SplitText(text, 100, 20)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds size: %d chars", i, len(c))
		}
	}
	// Adjacent chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-20:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d does not start with the previous chunk's tail", i)
		}
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 2500) + strings.Repeat("y", 2500)
	chunks := SplitText(text, DefaultChunkSize, DefaultChunkOverlap)

	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, "xy") {
		t.Error("boundary between document halves lost during chunking")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "y") {
		t.Error("final chunk must reach the end of the input")
	}
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize would loop forever without the step fallback
	text := strings.Repeat("z", 250)
	chunks := SplitText(text, 100, 100)
	if len(chunks) == 0 || len(chunks) > 4 {
		t.Errorf("degenerate overlap produced %d chunks", len(chunks))
	}
}
