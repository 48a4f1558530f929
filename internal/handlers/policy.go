package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"carebot/internal/contextutil"
	"carebot/internal/retrieval"
)

// PolicyUploader ingests ad-hoc policy text for a member.
// Implemented by ingest.Pipeline.
type PolicyUploader interface {
	AddUserPolicy(ctx context.Context, userID, text string) (int, error)
}

// PolicyHandler handles ad-hoc personal policy uploads.
type PolicyHandler struct {
	uploader PolicyUploader
	validate *validator.Validate
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(uploader PolicyUploader) *PolicyHandler {
	return &PolicyHandler{
		uploader: uploader,
		validate: validator.New(),
	}
}

// PolicyRequest represents the HTTP request payload for a policy upload.
type PolicyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// PolicyResponse represents the HTTP response payload for a policy upload.
type PolicyResponse struct {
	UserID      string `json:"user_id"`
	ChunksAdded int    `json:"chunks_added"`
}

// ServeHTTP handles policy upload requests.
func (h *PolicyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req PolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "invalid policy request", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "session_id and text are required")
		return
	}

	userID, generic := retrieval.NormalizeUserID(req.SessionID)
	if generic {
		logger.WarnContext(ctx, "policy upload from unidentified session", "session_id", req.SessionID)
		writeError(ctx, w, http.StatusBadRequest, "Personal policies require an identified member session")
		return
	}

	added, err := h.uploader.AddUserPolicy(ctx, userID, req.Text)
	if err != nil {
		logger.ErrorContext(ctx, "failed to add user policy", "user_id", userID, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to store policy")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, PolicyResponse{
		UserID:      userID,
		ChunksAdded: added,
	})
}
