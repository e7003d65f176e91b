package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/document"
)

// ErrUnsupported is returned by ForFile for extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file type")

// Parser converts raw document bytes into paragraphs with emphasis spans.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tunes parser construction.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the PDF library
	// cannot read a file. Text recovered that way carries no emphasis.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// paragraphBuilder accumulates spans for one paragraph, one span per source
// run. Whitespace runs (newlines included) collapse to a single space so a
// paragraph always renders as one outline line.
type paragraphBuilder struct {
	spans []document.Span
	space bool // last written rune was whitespace
}

func (b *paragraphBuilder) write(text string, emphasized bool) {
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !b.space && (len(b.spans) > 0 || sb.Len() > 0) {
				sb.WriteByte(' ')
			}
			b.space = true
			continue
		}
		sb.WriteRune(r)
		b.space = false
	}
	if sb.Len() == 0 {
		return
	}
	b.spans = append(b.spans, document.Span{Text: sb.String(), Emphasized: emphasized})
}

// paragraph returns the collected paragraph with trailing whitespace removed
// and resets the builder.
func (b *paragraphBuilder) paragraph(style string) (document.Paragraph, bool) {
	spans := b.spans
	b.spans, b.space = nil, false
	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if last.Text != "" {
			break
		}
		spans = spans[:len(spans)-1]
	}
	if len(spans) == 0 {
		return document.Paragraph{}, false
	}
	return document.Paragraph{Spans: spans, Style: style}, true
}
