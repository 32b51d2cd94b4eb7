package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"nexlify-ingest/internal/service"
)

// SupportedExtensions lists upload file types this service can extract
// text from. PDF and other binary formats are out of scope; their text
// must be extracted upstream.
var SupportedExtensions = []string{".txt", ".html", ".htm", ".md", ".markdown"}

var markdownParser = goldmark.New()

// ExtractText converts an uploaded file into plain text based on its
// extension. Unsupported extensions are a validation error.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		return string(data), nil
	case ".html", ".htm":
		return StripHTML(string(data)), nil
	case ".md", ".markdown":
		return markdownToText(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension %q", service.ErrInvalidInput, ext)
	}
}

// markdownToText parses markdown and collects the text content of the
// document, with block boundaries separated by newlines. Formatting,
// links, and code fences are flattened to their text.
func markdownToText(content []byte) string {
	reader := gmtext.NewReader(content)
	doc := markdownParser.Parser().Parse(reader)

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.HardLineBreak() || node.SoftLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeBlock:
			writeCodeLines(&b, node, content)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeCodeLines(&b, node, content)
			return ast.WalkSkipChildren, nil
		default:
			// Separate block elements so words from adjacent blocks do
			// not run together.
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func writeCodeLines(b *strings.Builder, n ast.Node, content []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
}
