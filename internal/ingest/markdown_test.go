package ingest

import (
	"strings"
	"testing"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "empty content",
			content:      "",
			wantContains: nil,
		},
		{
			name:         "heading and paragraph",
			content:      "# Gold Plan\n\nCoverage up to $500,000.",
			wantContains: []string{"Gold Plan", "Coverage up to $500,000."},
			wantAbsent:   []string{"#"},
		},
		{
			name:         "emphasis stripped",
			content:      "Maternity is **not** covered under the *silver* plan.",
			wantContains: []string{"not", "silver"},
			wantAbsent:   []string{"**", "*silver*"},
		},
		{
			name:         "list items on separate lines",
			content:      "- Cashless treatment\n- No copay",
			wantContains: []string{"Cashless treatment\n", "No copay"},
		},
		{
			name:         "code block content kept",
			content:      "Claim form:\n\n```\nFORM-22B\n```\n",
			wantContains: []string{"FORM-22B"},
			wantAbsent:   []string{"```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkdown([]byte(tt.content))

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("StripMarkdown() = %q, missing %q", got, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("StripMarkdown() = %q, should not contain %q", got, absent)
				}
			}
		})
	}
}
