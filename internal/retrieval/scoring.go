package retrieval

import (
	"math"
	"strconv"

	"carebot/internal/ingest"
	"carebot/internal/storage"
)

const defaultDocConfidence = 0.5

// chunkMeta is the typed view of chunk metadata the ranker works with.
// Parsing happens once at this boundary so the scoring code never touches
// raw metadata strings.
type chunkMeta struct {
	DocType    string
	PolicyID   string
	Confidence float64
}

func parseChunkMeta(rec *storage.ChunkRecord) chunkMeta {
	meta := chunkMeta{Confidence: defaultDocConfidence}
	if rec.Metadata == nil {
		return meta
	}
	meta.DocType = rec.Metadata[ingest.MetaDocType]
	meta.PolicyID = rec.Metadata[ingest.MetaPolicyID]
	if raw, ok := rec.Metadata[ingest.MetaConfidence]; ok {
		if conf, err := strconv.ParseFloat(raw, 64); err == nil && conf >= 0 && conf <= 1 {
			meta.Confidence = conf
		}
	}
	return meta
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched dimensions or a zero-magnitude vector score 0 rather than
// erroring, so a single malformed embedding never breaks ranking.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
