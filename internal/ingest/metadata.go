package ingest

import (
	"path"
	"strings"
)

// Metadata keys attached to every ingested chunk. The map stays open at the
// storage boundary; the retrieval layer applies a typed view with defaults.
const (
	MetaUserID     = "user_id"
	MetaDocType    = "doc_type"
	MetaPolicyID   = "policy_id"
	MetaSource     = "source"
	MetaConfidence = "confidence"
	MetaRole       = "role"
)

// Doc type values. Personal documents receive a re-ranking boost over shared
// reference material.
const (
	DocTypePersonal  = "personal"
	DocTypeReference = "reference"
)

// SourceMeta is what the path layout of the knowledge store tells us about a file.
type SourceMeta struct {
	UserID   string // owner ("global" for shared docs)
	Scope    string // session scope to store the chunks under
	DocType  string
	Role     string
	PolicyID string
	Source   string
	// Confidence is the static source-type trust weight, rendered into
	// metadata as a string. Distinct from per-query similarity.
	Confidence string
}

// ParseSourcePath derives ownership and document metadata from a knowledge
// file path. Layout: "users/<id>/..." for personal documents,
// "internal/..." for employee-only material, everything else (typically
// "global/...") is shared customer reference.
func ParseSourcePath(filePath string) SourceMeta {
	clean := path.Clean(strings.ReplaceAll(filePath, "\\", "/"))
	parts := strings.Split(clean, "/")

	meta := SourceMeta{
		UserID:  "global",
		Scope:   "GLOBAL",
		DocType: DocTypeReference,
		Role:    "customer",
	}

	if len(parts) >= 2 && parts[0] == "users" {
		meta.UserID = parts[1]
		meta.Scope = parts[1]
		meta.DocType = DocTypePersonal
	} else if parts[0] == "internal" {
		meta.Role = "employee"
	}

	meta.PolicyID = policyIDFromPath(clean)
	meta.Source, meta.Confidence = classifySource(clean)

	return meta
}

// ToMap renders the metadata for chunk storage.
func (m SourceMeta) ToMap() map[string]string {
	return map[string]string{
		MetaUserID:     m.UserID,
		MetaDocType:    m.DocType,
		MetaPolicyID:   m.PolicyID,
		MetaSource:     m.Source,
		MetaConfidence: m.Confidence,
		MetaRole:       m.Role,
	}
}

// Terms returns the inverted-index terms for chunks of this source.
// Personal documents carry no role posting: the role terms describe shared
// audience corpora, and a member's own documents must never enter another
// caller's candidate set.
func (m SourceMeta) Terms() []string {
	terms := []string{
		"user:" + m.UserID,
		"doc_type:" + m.DocType,
		"policy_id:" + m.PolicyID,
		"source:" + m.Source,
	}
	if m.DocType != DocTypePersonal {
		terms = append(terms, "role:"+m.Role)
	}
	return terms
}

// policyIDFromPath builds a stable citation tag from the file name,
// e.g. "global/faq.txt" -> "POL_FAQ".
func policyIDFromPath(filePath string) string {
	base := path.Base(filePath)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return "POL_" + b.String()
}

// classifySource assigns a deterministic trust weight per source document.
// Official policy documents outrank claim history, FAQs and support logs.
func classifySource(filePath string) (source, confidence string) {
	lower := strings.ToLower(filePath)
	switch {
	case strings.Contains(lower, "policy"):
		return "official_doc", "1.0"
	case strings.Contains(lower, "claim"):
		return "claim_history", "0.95"
	case strings.Contains(lower, "faq"):
		return "faq", "0.85"
	case strings.Contains(lower, "support"), strings.Contains(lower, "log"):
		return "support_log", "0.70"
	default:
		return "unclassified", "0.80"
	}
}
