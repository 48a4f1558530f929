// Package assembler builds the context block for a chat turn, blending
// conversation history with retrieved knowledge.
package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"carebot/internal/contextutil"
	"carebot/internal/intent"
	"carebot/internal/retrieval"
	"carebot/internal/storage"
)

const (
	historyLoadLimit = 10
	historyShowLimit = 5

	encodingName = "cl100k_base"
)

// HistoryProvider loads recent conversation turns.
// Implemented by memory.ConversationMemory.
type HistoryProvider interface {
	GetLast(ctx context.Context, sessionID string, limit int) ([]*storage.MessageRecord, error)
}

// Retriever finds knowledge chunks for a question.
// Implemented by retrieval.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, userID, question string) retrieval.Result
}

// Result is the assembled context for one turn.
type Result struct {
	ContextText     string
	IsLowConfidence bool
	IsFrustrated    bool
	Confidence      float64
	Sources         []string
}

// Assembler decides, per turn, whether to answer from history, re-explain
// the previous answer, or run retrieval, and bounds the result by a token
// budget.
type Assembler struct {
	history     HistoryProvider
	retriever   Retriever
	tokenBudget int
	encoder     *tiktoken.Tiktoken
}

// New creates an assembler. The token budget bounds the assembled context;
// zero disables budgeting. Encoder setup failure also disables budgeting
// rather than failing construction.
func New(history HistoryProvider, retriever Retriever, tokenBudget int) *Assembler {
	encoder, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		encoder = nil
	}
	return &Assembler{
		history:     history,
		retriever:   retriever,
		tokenBudget: tokenBudget,
		encoder:     encoder,
	}
}

// BuildContext assembles the context for a question. The caller may pass
// history it already loaded; nil means load from memory.
func (a *Assembler) BuildContext(ctx context.Context, sessionID, question string, detected intent.Intent, history []*storage.MessageRecord) Result {
	logger := contextutil.LoggerFromContext(ctx)

	if history == nil {
		loaded, err := a.history.GetLast(ctx, sessionID, historyLoadLimit)
		if err != nil {
			logger.WarnContext(ctx, "failed to load history", "session_id", sessionID, "error", err)
		} else {
			history = loaded
		}
	}

	if isFrustrated(question, history) {
		logger.InfoContext(ctx, "frustration detected", "session_id", sessionID)
		return a.bounded(Result{
			ContextText:  renderHistory(history),
			IsFrustrated: true,
		})
	}

	if wantsRepeat(question) {
		if answer, ok := lastAnswer(history); ok {
			logger.DebugContext(ctx, "re-explaining previous answer", "session_id", sessionID)
			return a.bounded(Result{
				ContextText: "Previous answer to re-explain:\n" + answer.Content,
				Confidence:  answer.Confidence,
			})
		}
	}

	if isFollowUp(question, history) {
		logger.DebugContext(ctx, "follow-up question, skipping retrieval", "session_id", sessionID)
		return a.bounded(Result{ContextText: renderHistory(history)})
	}

	if !detected.RetrievalWorthy() {
		return a.bounded(Result{ContextText: renderHistory(history)})
	}

	retrieved := a.retriever.Retrieve(ctx, sessionID, question)
	if !retrieved.Found {
		return a.bounded(Result{
			ContextText:     renderHistory(history),
			IsLowConfidence: true,
		})
	}

	var b strings.Builder
	if h := renderHistory(history); h != "" {
		b.WriteString(h)
		b.WriteString("\n\n")
	}
	b.WriteString("Relevant policy information:\n")
	b.WriteString(retrieved.ContextText)

	return a.bounded(Result{
		ContextText: b.String(),
		Confidence:  retrieved.Confidence,
		Sources:     retrieved.Sources,
	})
}

// renderHistory formats the most recent turns for the prompt.
func renderHistory(history []*storage.MessageRecord) string {
	if len(history) > historyShowLimit {
		history = history[len(history)-historyShowLimit:]
	}
	if len(history) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, msg := range history {
		label := "User"
		if msg.Role == "assistant" {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// bounded trims the context text to the token budget.
func (a *Assembler) bounded(r Result) Result {
	if a.tokenBudget <= 0 || a.encoder == nil || r.ContextText == "" {
		return r
	}

	tokens := a.encoder.Encode(r.ContextText, nil, nil)
	if len(tokens) <= a.tokenBudget {
		return r
	}
	r.ContextText = a.encoder.Decode(tokens[:a.tokenBudget])
	return r
}
