package document

import "strings"

// Document is a loaded source document reduced to its paragraphs.
type Document struct {
	Title      string      // Document title (from metadata or filename)
	Paragraphs []Paragraph // Paragraphs in reading order, blank ones included
}

// Paragraph is one unit of source text with per-run emphasis.
type Paragraph struct {
	Spans []Span
	Style string // Source style name, e.g. "Heading1" (empty if N/A)
}

// Span is a contiguous run of text sharing one emphasis flag.
type Span struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Text returns the plain text of the paragraph.
func (p Paragraph) Text() string {
	if len(p.Spans) == 1 {
		return p.Spans[0].Text
	}
	var sb strings.Builder
	for _, s := range p.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// IsBlank reports whether the paragraph has no text after trimming.
func (p Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text()) == ""
}

// HasEmphasis reports whether any span is emphasized.
func (p Paragraph) HasEmphasis() bool {
	for _, s := range p.Spans {
		if s.Emphasized {
			return true
		}
	}
	return false
}

// Coalesce returns a copy of the paragraph with adjacent spans of equal
// emphasis merged and empty spans removed.
func (p Paragraph) Coalesce() Paragraph {
	out := Paragraph{Style: p.Style, Spans: make([]Span, 0, len(p.Spans))}
	for _, s := range p.Spans {
		if s.Text == "" {
			continue
		}
		if n := len(out.Spans); n > 0 && out.Spans[n-1].Emphasized == s.Emphasized {
			out.Spans[n-1].Text += s.Text
			continue
		}
		out.Spans = append(out.Spans, s)
	}
	return out
}

// Plain builds a paragraph from unemphasized text.
func Plain(text string) Paragraph {
	return Paragraph{Spans: []Span{{Text: text}}}
}

// RawText joins the trimmed text of every non-blank paragraph with newlines.
func (d *Document) RawText() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs {
		t := strings.TrimSpace(p.Text())
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// NonBlank returns the number of paragraphs with text.
func (d *Document) NonBlank() int {
	n := 0
	for _, p := range d.Paragraphs {
		if !p.IsBlank() {
			n++
		}
	}
	return n
}
