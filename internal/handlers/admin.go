package handlers

import (
	"context"
	"net/http"

	"carebot/internal/contextutil"
	"carebot/internal/ingest"
)

// Resyncer wipes and rebuilds the knowledge store.
// Implemented by ingest.Pipeline.
type Resyncer interface {
	Reset(ctx context.Context) (*ingest.SyncResult, error)
}

// StoreStats exposes store and index counters for diagnostics.
type StoreStats interface {
	ChunkCount(ctx context.Context) (int, error)
	TermCount(ctx context.Context) (int, error)
}

// AdminHandler handles operational endpoints.
type AdminHandler struct {
	resyncer Resyncer
	stats    StoreStats
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(resyncer Resyncer, stats StoreStats) *AdminHandler {
	return &AdminHandler{resyncer: resyncer, stats: stats}
}

// SyncResponse represents the HTTP response payload for a re-sync.
type SyncResponse struct {
	FilesProcessed int    `json:"files_processed"`
	ChunksAdded    int    `json:"chunks_added"`
	Duration       string `json:"duration"`
}

// DiagnosticResponse represents the HTTP response payload for diagnostics.
type DiagnosticResponse struct {
	ChunkCount int `json:"chunk_count"`
	TermCount  int `json:"term_count"`
}

// Sync wipes the store and runs a full re-ingest.
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	result, err := h.resyncer.Reset(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "re-sync failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Re-sync failed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, SyncResponse{
		FilesProcessed: result.FilesProcessed,
		ChunksAdded:    result.ChunksAdded,
		Duration:       result.Duration.String(),
	})
}

// Diagnostic reports store and index counts.
func (h *AdminHandler) Diagnostic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := h.stats.ChunkCount(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count chunks", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to read store stats")
		return
	}
	terms, err := h.stats.TermCount(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count index terms", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to read index stats")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DiagnosticResponse{
		ChunkCount: chunks,
		TermCount:  terms,
	})
}
