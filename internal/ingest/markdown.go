package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownParser is shared; goldmark parsers are safe for concurrent use.
var markdownParser = goldmark.New()

// StripMarkdown reduces markdown content to plain text so knowledge files
// written as markdown chunk and embed the same way as plain .txt sources.
// Headings, list items, and paragraphs become newline-separated text;
// formatting syntax is dropped.
func StripMarkdown(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	reader := text.NewReader(content)
	doc := markdownParser.Parser().Parse(reader)

	var builder strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
				builder.WriteString("\n")
			}
		case *ast.Text:
			segment := node.Segment
			builder.Write(segment.Value(content))
		case *ast.String:
			builder.Write(node.Value)
		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(content))
			}
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(content))
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}
