package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks carebot/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_intent_classifier.go -package=mocks carebot/internal/service IntentClassifier
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_context_builder.go -package=mocks carebot/internal/service ContextBuilder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_log.go -package=mocks carebot/internal/service ConversationLog
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService carebot/internal/service ChatService

import (
	"context"

	"carebot/internal/assembler"
	"carebot/internal/contextutil"
	"carebot/internal/intent"
	"carebot/internal/storage"
)

const historyLimit = 10

// LLMClient is the generation interface, defined from the service layer's
// perspective (consumer-first). Implemented by llm.Client.
type LLMClient interface {
	// Generate returns the complete reply for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Stream streams the reply via callback.
	Stream(ctx context.Context, prompt string, callback func(chunk string) error) error
}

// IntentClassifier detects what the member wants from a message.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) intent.Intent
}

// ContextBuilder assembles the context block for one turn.
type ContextBuilder interface {
	BuildContext(ctx context.Context, sessionID, question string, detected intent.Intent, history []*storage.MessageRecord) assembler.Result
}

// ConversationLog records and replays conversation turns.
type ConversationLog interface {
	Append(ctx context.Context, msg *storage.MessageRecord) error
	GetLast(ctx context.Context, sessionID string, limit int) ([]*storage.MessageRecord, error)
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	SessionID string `validate:"required"`
	Message   string `validate:"required"`
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply      string
	Intent     string
	Confidence float64
	Sources    []string
	Escalated  bool
}

// ChatService provides support-agent chat functionality.
type ChatService interface {
	// ProcessChat processes a chat request and returns a response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat processes a chat request, streaming reply tokens via
	// callback. The returned response carries the full reply and metadata.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	llmClient  LLMClient
	classifier IntentClassifier
	builder    ContextBuilder
	log        ConversationLog
}

// NewChatService creates a new ChatService.
func NewChatService(llmClient LLMClient, classifier IntentClassifier, builder ContextBuilder, log ConversationLog) ChatService {
	return &chatService{
		llmClient:  llmClient,
		classifier: classifier,
		builder:    builder,
		log:        log,
	}
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	turn, err := s.prepareTurn(ctx, req)
	if err != nil {
		return ChatResponse{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	reply, err := s.llmClient.Generate(ctx, turn.prompt)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return ChatResponse{}, ExternalError(err, "failed to get LLM response")
	}

	s.recordTurn(ctx, req, turn, reply)

	logger.InfoContext(ctx, "chat request processed successfully",
		"session_id", req.SessionID, "intent", turn.detected, "escalated", turn.escalated)
	return turn.response(reply), nil
}

// StreamChat processes a chat request and streams the response.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) (ChatResponse, error) {
	turn, err := s.prepareTurn(ctx, req)
	if err != nil {
		return ChatResponse{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	var reply []byte
	err = s.llmClient.Stream(ctx, turn.prompt, func(chunk string) error {
		reply = append(reply, chunk...)
		return callback(chunk)
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return ChatResponse{}, ExternalError(err, "failed to stream LLM response")
	}

	s.recordTurn(ctx, req, turn, string(reply))

	logger.InfoContext(ctx, "streaming chat request processed successfully",
		"session_id", req.SessionID, "intent", turn.detected, "escalated", turn.escalated)
	return turn.response(string(reply)), nil
}

// chatTurn carries the per-turn state between preparation, generation,
// and recording.
type chatTurn struct {
	detected  intent.Intent
	assembled assembler.Result
	prompt    string
	escalated bool
}

func (t *chatTurn) response(reply string) ChatResponse {
	return ChatResponse{
		Reply:      reply,
		Intent:     string(t.detected),
		Confidence: t.assembled.Confidence,
		Sources:    t.assembled.Sources,
		Escalated:  t.escalated,
	}
}

// prepareTurn validates the request, classifies intent, and assembles the
// generation prompt.
func (s *chatService) prepareTurn(ctx context.Context, req ChatRequest) (*chatTurn, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Message == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return nil, &ValidationError{Field: "message", Message: "cannot be empty"}
	}
	if req.SessionID == "" {
		logger.WarnContext(ctx, "missing session id in chat request")
		return nil, &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}

	detected := s.classifier.Classify(ctx, req.Message)

	history, err := s.log.GetLast(ctx, req.SessionID, historyLimit)
	if err != nil {
		logger.WarnContext(ctx, "failed to load conversation history", "session_id", req.SessionID, "error", err)
		history = nil
	}

	assembled := s.builder.BuildContext(ctx, req.SessionID, req.Message, detected, history)
	escalated := assembled.IsFrustrated || detected == intent.TalkToAgent

	return &chatTurn{
		detected:  detected,
		assembled: assembled,
		prompt:    buildPrompt(req.Message, promptView(assembled, escalated)),
		escalated: escalated,
	}, nil
}

// promptView forces the frustration instruction when the turn escalates
// for reasons other than detected frustration (explicit agent request).
func promptView(assembled assembler.Result, escalated bool) assembler.Result {
	if escalated {
		assembled.IsFrustrated = true
	}
	return assembled
}

// recordTurn appends the question and answer to conversation memory.
// Recording failures are logged, never surfaced: the member already has
// the reply.
func (s *chatService) recordTurn(ctx context.Context, req ChatRequest, turn *chatTurn, reply string) {
	logger := contextutil.LoggerFromContext(ctx)

	source := "LLM"
	if len(turn.assembled.Sources) > 0 {
		source = "VECTOR_RAG"
	}

	if err := s.log.Append(ctx, &storage.MessageRecord{
		SessionID:   req.SessionID,
		Role:        "user",
		Content:     req.Message,
		MessageType: "QUESTION",
		Intent:      string(turn.detected),
		Source:      "USER",
	}); err != nil {
		logger.WarnContext(ctx, "failed to record user message", "session_id", req.SessionID, "error", err)
	}

	if err := s.log.Append(ctx, &storage.MessageRecord{
		SessionID:   req.SessionID,
		Role:        "assistant",
		Content:     reply,
		MessageType: "ANSWER",
		Intent:      string(turn.detected),
		Source:      source,
		Confidence:  turn.assembled.Confidence,
	}); err != nil {
		logger.WarnContext(ctx, "failed to record assistant message", "session_id", req.SessionID, "error", err)
	}
}
