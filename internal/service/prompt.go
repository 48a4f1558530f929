package service

import (
	"strings"

	"carebot/internal/assembler"
)

const persona = `You are CareBot, a support assistant for a health insurance provider.
You answer questions about coverage, benefits, claims, and plan terms.
Rules:
- Answer only from the provided context and conversation. Never invent policy details.
- Be concise and plain-spoken; avoid insurance jargon where possible.
- Cite the policy tags (like [POL_TERMS]) that support your answer when present.
- Never give medical advice; for medical questions, recommend consulting a doctor.`

const lowConfidenceInstruction = `The knowledge base has no reliable answer for this question.
Say so honestly, give only general guidance, and suggest contacting member services for specifics.`

const frustrationInstruction = `The member is frustrated or has asked for a human.
Apologize briefly, do not repeat earlier explanations, and offer to open a support ticket
with a human agent. Keep the reply short.`

// buildPrompt assembles the full generation prompt for one turn.
func buildPrompt(question string, assembled assembler.Result) string {
	var b strings.Builder
	b.WriteString(persona)

	if assembled.IsFrustrated {
		b.WriteString("\n\n")
		b.WriteString(frustrationInstruction)
	} else if assembled.IsLowConfidence {
		b.WriteString("\n\n")
		b.WriteString(lowConfidenceInstruction)
	}

	if assembled.ContextText != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(assembled.ContextText)
	}

	b.WriteString("\n\nMember question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
