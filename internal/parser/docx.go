package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each body paragraph becomes one document
// paragraph; runs with bold run properties become emphasized spans.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs an io.ReaderAt and the archive size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &document.Document{Title: titleFromFilename(filename)}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		out.Paragraphs = append(out.Paragraphs, docxParagraph(para))
	}
	return out, nil
}

// docxParagraph keeps blank paragraphs so paragraph indices match the
// source; the outline builder skips them.
func docxParagraph(para *docx.Paragraph) document.Paragraph {
	var b paragraphBuilder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var text strings.Builder
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				text.WriteString(t.Text)
			case *docx.Tab:
				text.WriteByte('\t')
			case *docx.BarterRabbet:
				text.WriteByte('\n')
			}
		}
		b.write(text.String(), docxRunBold(run))
	}
	out, _ := b.paragraph(docxStyle(para))
	return out
}

func docxRunBold(run *docx.Run) bool {
	return run.RunProperties != nil && run.RunProperties.Bold != nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}
