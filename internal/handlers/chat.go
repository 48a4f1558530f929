package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"carebot/internal/contextutil"
	"carebot/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validator.New(),
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer     string   `json:"answer"`
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
	Escalated  bool     `json:"escalated"`
}

// ServeHTTP handles HTTP requests for chat. With ?stream=true the reply
// tokens are sent as Server-Sent Events.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "invalid chat request", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	svcReq := service.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreaming(w, r, svcReq)
		return
	}

	svcResp, err := h.chatService.ProcessChat(ctx, svcReq)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{
		Answer:     svcResp.Reply,
		Intent:     svcResp.Intent,
		Confidence: svcResp.Confidence,
		Sources:    svcResp.Sources,
		Escalated:  svcResp.Escalated,
	})
}

// handleStreaming streams the reply via Server-Sent Events: one "data:"
// event per token chunk, a final metadata event, then "[DONE]".
func (h *ChatHandler) handleStreaming(w http.ResponseWriter, r *http.Request, req service.ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(ctx, w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	resp, err := h.chatService.StreamChat(ctx, req, func(chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		_, _ = fmt.Fprintf(w, "data: {\"error\":\"%s\"}\n\n", err.Error())
		flusher.Flush()
		return
	}

	meta, err := json.Marshal(ChatResponse{
		Intent:     resp.Intent,
		Confidence: resp.Confidence,
		Sources:    resp.Sources,
		Escalated:  resp.Escalated,
	})
	if err == nil {
		_, _ = fmt.Fprintf(w, "event: metadata\ndata: %s\n\n", meta)
	}
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}
