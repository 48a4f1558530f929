package intent

import (
	"context"
	"errors"
	"testing"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.response, s.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     Intent
	}{
		{"policy info", `{"intent": "PolicyInfo"}`, nil, PolicyInfo},
		{"claim process", `{"intent": "ClaimProcess"}`, nil, ClaimProcess},
		{"claim status", `{"intent": "ClaimStatus"}`, nil, ClaimStatus},
		{"talk to agent", `{"intent": "TalkToAgent"}`, nil, TalkToAgent},
		{"code fenced json", "```json\n{\"intent\": \"PolicyInfo\"}\n```", nil, PolicyInfo},
		{"bare code fence", "```\n{\"intent\": \"ClaimProcess\"}\n```", nil, ClaimProcess},
		{"unknown label", `{"intent": "SmallTalk"}`, nil, Unknown},
		{"malformed json", `the intent is PolicyInfo`, nil, Unknown},
		{"generator error", "", errors.New("llm down"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&stubGenerator{response: tt.response, err: tt.err})
			if got := c.Classify(context.Background(), "some message"); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetrievalWorthy(t *testing.T) {
	tests := []struct {
		intent Intent
		want   bool
	}{
		{PolicyInfo, true},
		{ClaimProcess, true},
		{ClaimStatus, false},
		{TalkToAgent, false},
		{Unknown, false},
	}

	for _, tt := range tests {
		if got := tt.intent.RetrievalWorthy(); got != tt.want {
			t.Errorf("%v.RetrievalWorthy() = %v, want %v", tt.intent, got, tt.want)
		}
	}
}
