package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings,
// paragraphs and list items each become one paragraph; strong emphasis
// (**x** or __x__) becomes an emphasized span.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &document.Document{Title: titleFromFilename(filename)}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Heading:
				appendInline(doc, node, src, fmt.Sprintf("Heading%d", node.Level))
			case *ast.Paragraph, *ast.TextBlock:
				appendInline(doc, node, src, "")
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					var b paragraphBuilder
					b.write(string(seg.Value(src)), false)
					if para, ok := b.paragraph("Code"); ok {
						doc.Paragraphs = append(doc.Paragraphs, para)
					}
				}
			case *ast.HTMLBlock, *ast.ThematicBreak:
			default:
				// Lists, list items, blockquotes.
				walk(c)
			}
		}
	}
	walk(root)
	return doc, nil
}

func appendInline(doc *document.Document, n ast.Node, src []byte, style string) {
	var b paragraphBuilder
	writeInline(&b, n, src, false)
	if para, ok := b.paragraph(style); ok {
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
}

// writeInline walks inline children. strong is true inside a level-2
// emphasis node.
func writeInline(b *paragraphBuilder, n ast.Node, src []byte, strong bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.write(string(node.Segment.Value(src)), strong)
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.write(" ", strong)
			}
		case *ast.String:
			b.write(string(node.Value), strong)
		case *ast.AutoLink:
			b.write(string(node.Label(src)), strong)
		case *ast.RawHTML:
		case *ast.Emphasis:
			writeInline(b, node, src, strong || node.Level >= 2)
		default:
			writeInline(b, c, src, strong)
		}
	}
}
