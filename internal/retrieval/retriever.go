package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"carebot/internal/contextutil"
	"carebot/internal/ingest"
	"carebot/internal/storage"
)

const (
	relevanceFloor = 0.45
	simWeight      = 0.7
	confWeight     = 0.3
	personalBoost  = 1.5
	topK           = 3
)

// QueryEmbedder turns a user question into a query vector.
// Implemented by llm.EmbeddingsClient.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Result is the outcome of one retrieval pass.
type Result struct {
	ContextText string
	Found       bool
	Confidence  float64
	Sources     []string
}

// Retriever resolves, scores, and re-ranks knowledge chunks for a question.
type Retriever struct {
	embedder     QueryEmbedder
	vectors      storage.VectorStore
	index        storage.MetadataIndex
	embedTimeout time.Duration
}

// NewRetriever creates a retriever over the given stores.
func NewRetriever(embedder QueryEmbedder, vectors storage.VectorStore, index storage.MetadataIndex, embedTimeout time.Duration) *Retriever {
	return &Retriever{
		embedder:     embedder,
		vectors:      vectors,
		index:        index,
		embedTimeout: embedTimeout,
	}
}

type scoredChunk struct {
	rec   *storage.ChunkRecord
	meta  chunkMeta
	score float64
}

// Retrieve finds the best-matching chunks for a question, scoped to the
// caller's identity. Backend failures degrade to Found=false rather than
// erroring: the chat turn continues without retrieved context.
func (r *Retriever) Retrieve(ctx context.Context, userID, question string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	candidateIDs, err := r.resolveCandidates(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "candidate resolution failed", "user_id", userID, "error", err)
		return Result{}
	}
	if len(candidateIDs) == 0 {
		logger.DebugContext(ctx, "no candidate chunks for user", "user_id", userID)
		return Result{}
	}

	embedCtx := ctx
	if r.embedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, r.embedTimeout)
		defer cancel()
	}
	queryVec, err := r.embedder.EmbedQuery(embedCtx, question)
	if err != nil {
		logger.WarnContext(ctx, "query embedding failed", "error", err)
		return Result{}
	}

	chunks, err := r.vectors.GetByIDs(ctx, candidateIDs)
	if err != nil {
		logger.WarnContext(ctx, "chunk fetch failed", "error", err)
		return Result{}
	}

	scored := rankChunks(chunks, queryVec)
	if len(scored) == 0 {
		return Result{}
	}

	return buildResult(scored)
}

// resolveCandidates returns the ids eligible for scoring. Generic callers
// see customer-facing reference material; identified members see their
// personal documents plus the shared global set.
func (r *Retriever) resolveCandidates(ctx context.Context, userID string) ([]string, error) {
	id, generic := NormalizeUserID(userID)
	if generic {
		set, err := r.index.GetIDs(ctx, "role:customer")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve generic candidates: %w", err)
		}
		return setToSlice(set), nil
	}

	personal, err := r.index.GetIDs(ctx, "user:"+id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve personal candidates: %w", err)
	}
	global, err := r.index.GetIDs(ctx, "user:global")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve global candidates: %w", err)
	}

	union := make(map[string]struct{}, len(personal)+len(global))
	for id := range personal {
		union[id] = struct{}{}
	}
	for id := range global {
		union[id] = struct{}{}
	}
	return setToSlice(union), nil
}

// rankChunks applies the relevance floor and the weighted score, then
// stable-sorts descending and keeps the top results. Personal documents
// get a boost so a member's own policy outranks generic reference text.
func rankChunks(chunks []*storage.ChunkRecord, queryVec []float32) []scoredChunk {
	scored := make([]scoredChunk, 0, len(chunks))
	for _, rec := range chunks {
		sim := cosineSimilarity(queryVec, rec.Embedding)
		if sim <= relevanceFloor {
			continue
		}

		meta := parseChunkMeta(rec)
		score := simWeight*sim + confWeight*meta.Confidence
		if meta.DocType == ingest.DocTypePersonal {
			score *= personalBoost
		}
		scored = append(scored, scoredChunk{rec: rec, meta: meta, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// buildResult concatenates chunk texts with citation tags and collects
// distinct source policy ids in rank order.
func buildResult(scored []scoredChunk) Result {
	var b strings.Builder
	seen := make(map[string]struct{})
	var sources []string

	for i, sc := range scored {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if sc.meta.PolicyID != "" {
			fmt.Fprintf(&b, "[%s] ", sc.meta.PolicyID)
		}
		b.WriteString(sc.rec.Text)

		if sc.meta.PolicyID != "" {
			if _, dup := seen[sc.meta.PolicyID]; !dup {
				seen[sc.meta.PolicyID] = struct{}{}
				sources = append(sources, sc.meta.PolicyID)
			}
		}
	}

	return Result{
		ContextText: b.String(),
		Found:       true,
		Confidence:  scored[0].score,
		Sources:     sources,
	}
}

func setToSlice(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
