package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carebot/internal/contextutil"
	"carebot/internal/storage"
)

// DocumentEmbedder turns document texts into fixed-dimension vectors.
// Implemented by llm.EmbeddingsClient.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// SyncResult summarizes one ingestion run.
type SyncResult struct {
	FilesProcessed int
	FilesSkipped   int
	ChunksAdded    int
	Duration       time.Duration
}

// Pipeline ingests knowledge documents: chunk, embed, store, index.
type Pipeline struct {
	source    DocumentSource
	vectors   storage.VectorStore
	index     storage.MetadataIndex
	syncState storage.SyncStore
	embedder  DocumentEmbedder
	chunkSize int
	overlap   int
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	source DocumentSource,
	vectors storage.VectorStore,
	index storage.MetadataIndex,
	syncState storage.SyncStore,
	embedder DocumentEmbedder,
	chunkSize, overlap int,
) *Pipeline {
	return &Pipeline{
		source:    source,
		vectors:   vectors,
		index:     index,
		syncState: syncState,
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// SyncAll ingests every new or modified document from the source.
// Files already recorded in sync state with an unchanged modification time
// are skipped. Per-file failures are logged and do not abort the run.
// Cancellation via ctx stops between files; partial writes are safe because
// chunk saves are idempotent and per-chunk atomic.
func (p *Pipeline) SyncAll(ctx context.Context) (*SyncResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	files, err := p.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := &SyncResult{}
	var errorCount int

	for _, file := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec, err := p.syncState.Get(ctx, file.Path)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "failed to read sync state", "path", file.Path, "error", err)
		}
		if rec != nil && rec.LastModified == file.LastModified.Unix() {
			result.FilesSkipped++
			continue
		}

		added, err := p.ingestFile(ctx, file)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to ingest file", "path", file.Path, "error", err)
			continue
		}

		result.FilesProcessed++
		result.ChunksAdded += added
	}

	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "sync completed",
		"files_processed", result.FilesProcessed,
		"files_skipped", result.FilesSkipped,
		"chunks_added", result.ChunksAdded,
		"errors", errorCount,
		"duration", result.Duration,
	)

	if errorCount > 0 {
		return result, fmt.Errorf("sync completed with %d errors", errorCount)
	}
	return result, nil
}

// Reset wipes chunks, postings, and sync state, then runs a full ingest.
// Used by the admin re-sync operation.
func (p *Pipeline) Reset(ctx context.Context) (*SyncResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.vectors.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to wipe vector store: %w", err)
	}
	if err := p.index.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to wipe metadata index: %w", err)
	}
	if err := p.syncState.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to wipe sync state: %w", err)
	}

	logger.InfoContext(ctx, "store reset, starting full re-ingest")
	return p.SyncAll(ctx)
}

// AddUserPolicy ingests ad-hoc policy text uploaded by a user, scoped to
// that user and tagged personal. Chunks whose text already exists in the
// user's scope are skipped.
func (p *Pipeline) AddUserPolicy(ctx context.Context, userID, text string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("policy text is empty")
	}

	existing, err := p.vectors.GetByScope(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing chunks: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[c.Text] = struct{}{}
	}

	var texts []string
	for _, c := range Chunk(text, p.chunkSize, p.overlap) {
		if _, dup := seen[c]; dup {
			logger.DebugContext(ctx, "skipping duplicate chunk", "user_id", userID)
			continue
		}
		texts = append(texts, c)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	embeddings, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed policy text: %w", err)
	}

	meta := SourceMeta{
		UserID:     userID,
		Scope:      userID,
		DocType:    DocTypePersonal,
		Role:       "customer",
		PolicyID:   "POL_USER_" + strings.ToUpper(userID),
		Source:     "user_upload",
		Confidence: "0.80",
	}

	chunks, terms := buildChunks(texts, embeddings, meta)
	if err := p.vectors.Save(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to save chunks: %w", err)
	}
	if err := p.index.AddBatch(ctx, terms); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}

	logger.InfoContext(ctx, "added user policy", "user_id", userID, "chunks", len(chunks))
	return len(chunks), nil
}

// ingestFile chunks, embeds, stores, and indexes one document.
func (p *Pipeline) ingestFile(ctx context.Context, file FileInfo) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := p.source.Read(ctx, file.Path)
	if err != nil {
		return 0, err
	}
	if strings.HasSuffix(strings.ToLower(file.Path), ".md") {
		content = StripMarkdown([]byte(content))
	}
	if strings.TrimSpace(content) == "" {
		logger.WarnContext(ctx, "skipping empty file", "path", file.Path)
		// Record the sync anyway so the empty file is not retried every run.
		return 0, p.syncState.Upsert(ctx, &storage.SyncRecord{
			Path:         file.Path,
			LastModified: file.LastModified.Unix(),
		})
	}

	texts := Chunk(content, p.chunkSize, p.overlap)

	embeddings, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
	}

	meta := ParseSourcePath(file.Path)
	chunks, terms := buildChunks(texts, embeddings, meta)

	if err := p.vectors.Save(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to save chunks: %w", err)
	}
	if err := p.index.AddBatch(ctx, terms); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}

	if err := p.syncState.Upsert(ctx, &storage.SyncRecord{
		Path:         file.Path,
		LastModified: file.LastModified.Unix(),
	}); err != nil {
		return 0, fmt.Errorf("failed to record sync state: %w", err)
	}

	logger.InfoContext(ctx, "ingested file", "path", file.Path, "chunks", len(chunks), "policy_id", meta.PolicyID)
	return len(chunks), nil
}

// buildChunks assembles chunk records and the inverted-index postings for
// one source document.
func buildChunks(texts []string, embeddings [][]float32, meta SourceMeta) ([]*storage.ChunkRecord, map[string][]string) {
	chunks := make([]*storage.ChunkRecord, len(texts))
	ids := make([]string, len(texts))

	for i, text := range texts {
		id := uuid.New().String()
		ids[i] = id
		chunks[i] = &storage.ChunkRecord{
			ID:           id,
			Text:         text,
			SessionScope: meta.Scope,
			Embedding:    embeddings[i],
			Metadata:     meta.ToMap(),
		}
	}

	terms := make(map[string][]string)
	for _, term := range meta.Terms() {
		terms[term] = ids
	}

	return chunks, terms
}
