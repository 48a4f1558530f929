package assembler

import (
	"context"
	"strings"
	"testing"

	"carebot/internal/intent"
	"carebot/internal/retrieval"
	"carebot/internal/storage"
)

type stubHistory struct {
	messages []*storage.MessageRecord
	err      error
}

func (s *stubHistory) GetLast(context.Context, string, int) ([]*storage.MessageRecord, error) {
	return s.messages, s.err
}

type stubRetriever struct {
	result retrieval.Result
	calls  int
}

func (s *stubRetriever) Retrieve(context.Context, string, string) retrieval.Result {
	s.calls++
	return s.result
}

func userTurn(content string) *storage.MessageRecord {
	return &storage.MessageRecord{Role: "user", Content: content, MessageType: "QUESTION"}
}

func answerTurn(content string) *storage.MessageRecord {
	return &storage.MessageRecord{Role: "assistant", Content: content, MessageType: "ANSWER"}
}

func TestBuildContextRetrieves(t *testing.T) {
	retriever := &stubRetriever{result: retrieval.Result{
		ContextText: "[POL_TERMS] Deductibles apply before coverage.",
		Found:       true,
		Confidence:  0.9,
		Sources:     []string{"POL_TERMS"},
	}}
	a := New(&stubHistory{}, retriever, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "what is my deductible?", intent.PolicyInfo, nil)

	if retriever.calls != 1 {
		t.Fatalf("expected 1 retrieval call, got %d", retriever.calls)
	}
	if !strings.Contains(result.ContextText, "POL_TERMS") {
		t.Errorf("expected retrieved text in context, got %q", result.ContextText)
	}
	if result.Confidence != 0.9 || len(result.Sources) != 1 {
		t.Errorf("expected confidence and sources copied through, got %+v", result)
	}
	if result.IsLowConfidence || result.IsFrustrated {
		t.Errorf("unexpected flags: %+v", result)
	}
}

func TestBuildContextNotFoundIsLowConfidence(t *testing.T) {
	a := New(&stubHistory{}, &stubRetriever{}, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "what is my deductible?", intent.PolicyInfo, nil)

	if !result.IsLowConfidence {
		t.Error("expected IsLowConfidence when nothing is retrieved")
	}
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", result.Confidence)
	}
}

func TestBuildContextSkipsRetrievalForNonRetrievalIntents(t *testing.T) {
	retriever := &stubRetriever{}
	a := New(&stubHistory{}, retriever, 0)

	a.BuildContext(context.Background(), "sess-U101", "where is my claim?", intent.ClaimStatus, nil)
	a.BuildContext(context.Background(), "sess-U101", "get me a human", intent.TalkToAgent, nil)

	if retriever.calls != 0 {
		t.Errorf("expected no retrieval for non-retrieval intents, got %d calls", retriever.calls)
	}
}

func TestBuildContextHardFrustrationMarkers(t *testing.T) {
	retriever := &stubRetriever{}
	a := New(&stubHistory{}, retriever, 0)

	for _, question := range []string{
		"this bot is useless",
		"I want to talk to an agent",
		"open a ticket please",
		"we are going in circular conversations",
	} {
		result := a.BuildContext(context.Background(), "sess-U101", question, intent.PolicyInfo, nil)
		if !result.IsFrustrated {
			t.Errorf("expected frustration for %q", question)
		}
	}
	if retriever.calls != 0 {
		t.Errorf("expected no retrieval for frustrated turns, got %d calls", retriever.calls)
	}
}

func TestBuildContextConfusionRun(t *testing.T) {
	history := []*storage.MessageRecord{
		userTurn("I don't understand my deductible"),
		answerTurn("A deductible is what you pay first."),
		userTurn("that is not clear to me"),
		answerTurn("Let me rephrase: you pay the first part."),
	}
	a := New(&stubHistory{}, &stubRetriever{}, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "I'm still confused", intent.PolicyInfo, history)
	if !result.IsFrustrated {
		t.Error("expected frustration after three consecutive confused user turns")
	}
}

func TestBuildContextConfusionRunTooShort(t *testing.T) {
	history := []*storage.MessageRecord{
		userTurn("what is a deductible?"),
		answerTurn("A deductible is what you pay first."),
	}
	a := New(&stubHistory{}, &stubRetriever{result: retrieval.Result{Found: true, ContextText: "x"}}, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "I'm confused about the coverage", intent.PolicyInfo, history)
	if result.IsFrustrated {
		t.Error("one confused turn must not count as frustration")
	}
}

func TestBuildContextConfusionRunBrokenByClearTurn(t *testing.T) {
	history := []*storage.MessageRecord{
		userTurn("I don't understand this"),
		answerTurn("Here is how it works."),
		userTurn("ok thanks, and what is a copay?"),
		answerTurn("A copay is a fixed fee per visit."),
	}
	a := New(&stubHistory{}, &stubRetriever{result: retrieval.Result{Found: true, ContextText: "x"}}, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "hmm I'm confused", intent.PolicyInfo, history)
	if result.IsFrustrated {
		t.Error("a clear turn must reset the confusion run")
	}
}

func TestBuildContextExplainAgain(t *testing.T) {
	retriever := &stubRetriever{}
	history := []*storage.MessageRecord{
		userTurn("what is my deductible?"),
		answerTurn("Your deductible is $500 per year."),
	}
	a := New(&stubHistory{}, retriever, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "can you explain again?", intent.PolicyInfo, history)

	if retriever.calls != 0 {
		t.Error("explain-again must bypass retrieval")
	}
	if !strings.Contains(result.ContextText, "Your deductible is $500 per year.") {
		t.Errorf("expected previous answer embedded, got %q", result.ContextText)
	}
}

func TestBuildContextExplainAgainWithoutPriorAnswer(t *testing.T) {
	retriever := &stubRetriever{result: retrieval.Result{Found: true, ContextText: "fresh"}}
	a := New(&stubHistory{}, retriever, 0)

	a.BuildContext(context.Background(), "sess-U101", "explain again my policy", intent.PolicyInfo, []*storage.MessageRecord{})

	if retriever.calls != 1 {
		t.Error("with no prior answer, the question falls through to retrieval")
	}
}

func TestBuildContextFollowUpSuppression(t *testing.T) {
	retriever := &stubRetriever{}
	history := []*storage.MessageRecord{
		userTurn("what is my dental coverage?"),
		answerTurn("Two cleanings per year."),
	}
	a := New(&stubHistory{}, retriever, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "and is that per person?", intent.PolicyInfo, history)

	if retriever.calls != 0 {
		t.Error("referential follow-up must skip retrieval")
	}
	if !strings.Contains(result.ContextText, "Two cleanings per year.") {
		t.Errorf("expected history in context, got %q", result.ContextText)
	}
}

func TestBuildContextFollowUpReferentialPhrases(t *testing.T) {
	history := []*storage.MessageRecord{
		userTurn("what is my deductible?"),
		answerTurn("Your deductible is $500 per year."),
	}

	for _, question := range []string{
		"what did you mean by that",
		"can you clarify",
		"you said it was included",
		"what was the previous answer?",
	} {
		retriever := &stubRetriever{result: retrieval.Result{Found: true, ContextText: "x"}}
		a := New(&stubHistory{}, retriever, 0)

		result := a.BuildContext(context.Background(), "sess-U101", question, intent.PolicyInfo, history)

		if retriever.calls != 0 {
			t.Errorf("%q must be answered from history, got %d retrieval calls", question, retriever.calls)
		}
		if !strings.Contains(result.ContextText, "Your deductible is $500 per year.") {
			t.Errorf("%q: expected history in context, got %q", question, result.ContextText)
		}
	}
}

func TestBuildContextFollowUpWithDomainKeywordRetrieves(t *testing.T) {
	retriever := &stubRetriever{result: retrieval.Result{Found: true, ContextText: "vision details"}}
	history := []*storage.MessageRecord{
		userTurn("what is my dental coverage?"),
		answerTurn("Two cleanings per year."),
	}
	a := New(&stubHistory{}, retriever, 0)

	a.BuildContext(context.Background(), "sess-U101", "what about vision coverage?", intent.PolicyInfo, history)

	if retriever.calls != 1 {
		t.Error("a follow-up introducing a new domain keyword must retrieve")
	}
}

func TestBuildContextLoadsHistoryWhenNotProvided(t *testing.T) {
	history := &stubHistory{messages: []*storage.MessageRecord{
		userTurn("what is my dental coverage?"),
		answerTurn("Two cleanings per year."),
	}}
	a := New(history, &stubRetriever{}, 0)

	result := a.BuildContext(context.Background(), "sess-U101", "where is my claim?", intent.ClaimStatus, nil)

	if !strings.Contains(result.ContextText, "Two cleanings per year.") {
		t.Errorf("expected loaded history in context, got %q", result.ContextText)
	}
}

func TestRenderHistoryKeepsLastFive(t *testing.T) {
	var history []*storage.MessageRecord
	for _, content := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		history = append(history, userTurn(content))
	}

	rendered := renderHistory(history)
	if strings.Contains(rendered, "two") {
		t.Errorf("expected only the last five turns, got %q", rendered)
	}
	if !strings.Contains(rendered, "three") || !strings.Contains(rendered, "seven") {
		t.Errorf("expected the last five turns present, got %q", rendered)
	}
}
