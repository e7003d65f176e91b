package parser

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/document"
)

// TextParser handles plain text files. Every line is one paragraph; plain
// text has no emphasis.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &document.Document{Title: titleFromFilename(filename)}
	for scanner.Scan() {
		var b paragraphBuilder
		b.write(scanner.Text(), false)
		para, _ := b.paragraph("")
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return doc, nil
}
