package retrieval

import (
	"math"
	"testing"

	"carebot/internal/storage"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical vectors", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero magnitude left", []float32{0, 0}, []float32{1, 2}, 0},
		{"zero magnitude right", []float32{1, 2}, []float32{0, 0}, 0},
		{"dimension mismatch", []float32{1, 2, 3}, []float32{1, 2}, 0},
		{"both empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float32{0.3, 0.7, 0.1}
	b := []float32{0.6, 1.4, 0.2} // a scaled by 2
	if got := cosineSimilarity(a, b); math.Abs(got-1) > 1e-6 {
		t.Errorf("expected scaled vector similarity 1, got %v", got)
	}
}

func TestParseChunkMeta(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     chunkMeta
	}{
		{
			name: "complete metadata",
			metadata: map[string]string{
				"doc_type": "personal", "policy_id": "POL_SUMMARY", "confidence": "0.95",
			},
			want: chunkMeta{DocType: "personal", PolicyID: "POL_SUMMARY", Confidence: 0.95},
		},
		{
			name:     "nil metadata defaults",
			metadata: nil,
			want:     chunkMeta{Confidence: 0.5},
		},
		{
			name:     "unparsable confidence defaults",
			metadata: map[string]string{"confidence": "high"},
			want:     chunkMeta{Confidence: 0.5},
		},
		{
			name:     "out of range confidence defaults",
			metadata: map[string]string{"confidence": "1.7"},
			want:     chunkMeta{Confidence: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseChunkMeta(&storage.ChunkRecord{Metadata: tt.metadata})
			if got != tt.want {
				t.Errorf("parseChunkMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
