package retrieval

import (
	"regexp"
	"strings"
)

// GenericUserID identifies demo sessions and callers with no resolvable
// identity. Generic callers only see customer-facing reference material.
const GenericUserID = "demo"

var (
	memberIDPattern = regexp.MustCompile(`(?i)(U\d+)$`)
	numericPattern  = regexp.MustCompile(`^\d+$`)
)

// NormalizeUserID maps a raw session or user identifier onto a canonical
// member id. Identifiers ending in a member token ("U101", "sess-U101",
// "user-U101") normalize to the uppercase token. Bare numeric ids are a
// legacy form and get the "U" prefix added. Anything else, including
// "demo" and empty strings, is the generic identity.
func NormalizeUserID(raw string) (id string, generic bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, GenericUserID) {
		return GenericUserID, true
	}
	if m := memberIDPattern.FindString(raw); m != "" {
		return strings.ToUpper(m), false
	}
	if numericPattern.MatchString(raw) {
		return "U" + raw, false
	}
	return GenericUserID, true
}
