package outline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
)

// LineKind classifies an outline line.
type LineKind int

const (
	KindBody LineKind = iota
	KindSection
	KindSubsection
)

func (k LineKind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindSubsection:
		return "subsection"
	case KindBody:
		return "body"
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *LineKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "section":
		*k = KindSection
	case "subsection":
		*k = KindSubsection
	case "body":
		*k = KindBody
	default:
		return fmt.Errorf("unknown line kind %q", b)
	}
	return nil
}

// Rendered line prefixes.
const (
	subsectionIndent = "   "
	bodyIndent       = "      "
)

// Line is one outline line. Every line carries its own position so that
// consumers never have to re-derive it from the rendered string.
type Line struct {
	Kind       LineKind        `json:"kind"`
	Section    int             `json:"section"`              // 0 before the first header
	Subsection string          `json:"subsection,omitempty"` // empty for section and body lines
	Spans      []document.Span `json:"spans"`
}

// Text renders the line's spans without the outline prefix.
func (l Line) Text() string {
	return RenderSpans(l.Spans)
}

// String renders the line with its outline prefix.
func (l Line) String() string {
	switch l.Kind {
	case KindSection:
		return strconv.Itoa(l.Section) + ". " + l.Text()
	case KindSubsection:
		return subsectionIndent + l.Subsection + ". " + l.Text()
	default:
		return bodyIndent + l.Text()
	}
}

// ID returns the section id of the line's position, e.g. "3b". It is empty
// when the line sits before the first section.
func (l Line) ID() string {
	if l.Section <= 0 {
		return ""
	}
	return strconv.Itoa(l.Section) + l.Subsection
}

// Lines renders every line.
func Lines(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

const delimiter = '*'

var delimEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`)

// RenderSpans concatenates spans in order, wrapping each emphasized span in
// its own pair of '*'. Literal '*' and '\' are backslash-escaped.
func RenderSpans(spans []document.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		t := delimEscaper.Replace(s.Text)
		if !s.Emphasized {
			sb.WriteString(t)
			continue
		}
		sb.WriteByte(delimiter)
		sb.WriteString(t)
		sb.WriteByte(delimiter)
	}
	return sb.String()
}

// ParseSpans is the inverse of RenderSpans: an unescaped '*' opens an
// emphasized span that ends at the next unescaped '*'. A '*' without a
// closing partner is kept as literal text.
func ParseSpans(s string) []document.Span {
	var (
		spans []document.Span
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, document.Span{Text: plain.String()})
			plain.Reset()
		}
	}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			plain.WriteByte(s[i+1])
			i += 2
		case c == delimiter:
			text, n, ok := scanEmphasis(s[i+1:])
			if !ok {
				plain.WriteByte(c)
				i++
				continue
			}
			flush()
			spans = append(spans, document.Span{Text: text, Emphasized: true})
			i += n + 2
		default:
			plain.WriteByte(c)
			i++
		}
	}
	flush()
	return spans
}

// scanEmphasis reads up to the next unescaped delimiter and returns the
// unescaped text and the number of raw bytes consumed before it.
func scanEmphasis(s string) (string, int, bool) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
			}
			sb.WriteByte(s[i])
		case delimiter:
			return sb.String(), i, true
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", 0, false
}
