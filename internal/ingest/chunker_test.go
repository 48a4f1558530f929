package ingest

import (
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantCount int
	}{
		{
			name:      "empty input",
			text:      "",
			size:      10,
			overlap:   2,
			wantCount: 0,
		},
		{
			name:      "shorter than one window",
			text:      "short",
			size:      10,
			overlap:   2,
			wantCount: 1,
		},
		{
			name:      "exactly one window",
			text:      strings.Repeat("a", 10),
			size:      10,
			overlap:   2,
			wantCount: 1,
		},
		{
			name:      "two windows",
			text:      strings.Repeat("a", 18),
			size:      10,
			overlap:   2,
			wantCount: 2,
		},
		{
			name:      "default parameters",
			text:      strings.Repeat("a", 1800),
			size:      DefaultChunkSize,
			overlap:   DefaultChunkOverlap,
			wantCount: 2,
		},
		{
			name:      "zero overlap",
			text:      strings.Repeat("a", 25),
			size:      10,
			overlap:   0,
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.text, tt.size, tt.overlap)
			if len(chunks) != tt.wantCount {
				t.Errorf("Chunk() returned %d chunks, want %d", len(chunks), tt.wantCount)
			}
		})
	}
}

func TestChunk_FullCoverage(t *testing.T) {
	// Reconstructing the text from chunk offsets must reproduce the input
	// exactly: no rune skipped, no gap between windows.
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("0123456789", 30)
	size, overlap := 50, 10
	step := size - overlap

	chunks := Chunk(text, size, overlap)
	if len(chunks) == 0 {
		t.Fatal("Chunk() returned no chunks for non-empty input")
	}

	runes := []rune(text)
	var rebuilt []rune
	for i, chunk := range chunks {
		chunkRunes := []rune(chunk)
		if i == 0 {
			rebuilt = append(rebuilt, chunkRunes...)
			continue
		}
		// Each subsequent chunk starts overlap runes before the previous end.
		start := i * step
		if start+len(chunkRunes) <= len(rebuilt) {
			continue
		}
		rebuilt = append(rebuilt, chunkRunes[len(rebuilt)-start:]...)
	}

	if string(rebuilt) != string(runes) {
		t.Errorf("Chunk() coverage gap: rebuilt %d runes, want %d", len(rebuilt), len(runes))
	}
}

func TestChunk_ChunkCountFormula(t *testing.T) {
	// count = ceil((len - overlap) / (size - overlap)) for len > size
	size, overlap := 100, 20
	step := size - overlap

	for _, length := range []int{1, 50, 100, 101, 180, 181, 500, 1000} {
		text := strings.Repeat("x", length)
		chunks := Chunk(text, size, overlap)

		want := 1
		if length > size {
			want = (length - overlap + step - 1) / step
		}
		if len(chunks) != want {
			t.Errorf("Chunk() len=%d returned %d chunks, want %d", length, len(chunks), want)
		}
	}
}

func TestChunk_LastChunkMayBeShort(t *testing.T) {
	chunks := Chunk(strings.Repeat("a", 15), 10, 2)
	if len(chunks) != 2 {
		t.Fatalf("Chunk() returned %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != 10 {
		t.Errorf("Chunk() first chunk length = %d, want 10", len(chunks[0]))
	}
	if len(chunks[1]) != 7 {
		t.Errorf("Chunk() last chunk length = %d, want 7", len(chunks[1]))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("insurance policy coverage ", 100)
	a := Chunk(text, 130, 30)
	b := Chunk(text, 130, 30)
	if len(a) != len(b) {
		t.Fatalf("Chunk() nondeterministic count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Chunk() nondeterministic chunk %d", i)
		}
	}
}
