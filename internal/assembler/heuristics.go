package assembler

import (
	"strings"

	"carebot/internal/storage"
)

// confusionMarkers flag turns where the user signals they did not follow
// the previous answer.
var confusionMarkers = []string{
	"understand",
	"not clear",
	"confused",
	"what do you mean",
}

// hardFrustrationMarkers in the current question escalate immediately.
var hardFrustrationMarkers = []string{
	"stupid",
	"useless",
	"broken",
	"agent",
	"ticket",
	"circular",
}

// frustrationRunLength is how many consecutive confused user turns,
// including the current one, count as frustration.
const frustrationRunLength = 3

// repeatPatterns mark an explicit request to re-explain the last answer.
var repeatPatterns = []string{
	"explain again",
	"explain that again",
	"say that again",
	"repeat that",
	"can you repeat",
	"one more time",
	"rephrase",
}

// referentialMarkers indicate the question leans on earlier conversation
// rather than introducing a new topic.
var referentialMarkers = []string{
	"that",
	"again",
	"previous",
	"earlier",
	"you said",
	"mean",
	"clarify",
	"what about",
	"how about",
	"what if",
	"does it",
	"is it",
	"the same",
	"also",
}

// domainKeywords is the insurance and medical vocabulary that marks a
// question as introducing new retrievable subject matter.
var domainKeywords = []string{
	"policy", "coverage", "cover", "claim", "deductible", "premium",
	"copay", "coinsurance", "benefit", "network", "provider", "enrollment",
	"appeal", "reimbursement", "out-of-pocket", "dental", "vision",
	"prescription", "medication", "doctor", "hospital", "surgery",
	"therapy", "maternity", "preventive", "specialist", "emergency",
}

func containsAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// isFrustrated reports whether the user has hit a wall: either a hard
// marker in the current question, or a run of consecutive confused user
// turns ending in the current one.
func isFrustrated(question string, history []*storage.MessageRecord) bool {
	if containsAny(question, hardFrustrationMarkers) {
		return true
	}
	if !containsAny(question, confusionMarkers) {
		return false
	}

	run := 1 // the current question
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != "user" {
			continue
		}
		if !containsAny(msg.Content, confusionMarkers) {
			break
		}
		run++
		if run >= frustrationRunLength {
			return true
		}
	}
	return run >= frustrationRunLength
}

// wantsRepeat reports an explicit request to re-explain the last answer.
func wantsRepeat(question string) bool {
	return containsAny(question, repeatPatterns)
}

// lastAnswer finds the most recent assistant answer in the history.
func lastAnswer(history []*storage.MessageRecord) (*storage.MessageRecord, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role == "assistant" && msg.MessageType == "ANSWER" {
			return msg, true
		}
	}
	return nil, false
}

// isFollowUp reports referential phrasing that introduces no new domain
// keyword. Such questions are answered from conversation history alone;
// running retrieval on them surfaces unrelated chunks.
func isFollowUp(question string, history []*storage.MessageRecord) bool {
	if len(history) == 0 {
		return false
	}
	if !containsAny(question, referentialMarkers) {
		return false
	}
	return !containsAny(question, domainKeywords)
}
