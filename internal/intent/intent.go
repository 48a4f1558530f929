// Package intent classifies user messages into support intents via the LLM.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"carebot/internal/contextutil"
)

// Intent is a coarse category of what the user wants from the support agent.
type Intent string

const (
	PolicyInfo   Intent = "PolicyInfo"
	ClaimProcess Intent = "ClaimProcess"
	ClaimStatus  Intent = "ClaimStatus"
	TalkToAgent  Intent = "TalkToAgent"
	Unknown      Intent = "Unknown"
)

// RetrievalWorthy reports whether the intent benefits from knowledge
// retrieval. Status lookups and handoff requests do not.
func (i Intent) RetrievalWorthy() bool {
	return i == PolicyInfo || i == ClaimProcess
}

// Generator produces a completion for a prompt. Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier detects intent with a constrained LLM prompt.
type Classifier struct {
	generator Generator
}

// NewClassifier creates an intent classifier over the given generator.
func NewClassifier(generator Generator) *Classifier {
	return &Classifier{generator: generator}
}

const classifyPrompt = `You are an intent classifier for a health insurance support agent.
Classify the user message into exactly one of these intents:
- PolicyInfo: questions about coverage, benefits, deductibles, or plan terms
- ClaimProcess: how to file, appeal, or document a claim
- ClaimStatus: status of an already submitted claim
- TalkToAgent: wants a human agent or to open a ticket
- Unknown: anything else

Respond with JSON only, no prose: {"intent": "<one of the five intents>"}

User message: %s`

type classifyResponse struct {
	Intent string `json:"intent"`
}

// Classify returns the detected intent for a message. Any LLM failure or
// malformed output degrades to Unknown; classification never fails a turn.
func (c *Classifier) Classify(ctx context.Context, message string) Intent {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := c.generator.Generate(ctx, fmt.Sprintf(classifyPrompt, message))
	if err != nil {
		logger.WarnContext(ctx, "intent classification failed", "error", err)
		return Unknown
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		logger.WarnContext(ctx, "unparsable intent response", "response", raw, "error", err)
		return Unknown
	}

	switch Intent(parsed.Intent) {
	case PolicyInfo, ClaimProcess, ClaimStatus, TalkToAgent:
		return Intent(parsed.Intent)
	default:
		return Unknown
	}
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models wrap JSON output in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
