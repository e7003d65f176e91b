package outline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/document"
)

// RolloverPolicy decides what follows subsection "z" when paragraphs keep
// coming without a new header.
type RolloverPolicy int

const (
	// RolloverExtend continues with two-letter ids: z, aa, ab, ...
	RolloverExtend RolloverPolicy = iota
	// RolloverBody stops lettering and emits body lines until the next
	// header or explicit letter prefix.
	RolloverBody
)

func (p RolloverPolicy) String() string {
	switch p {
	case RolloverExtend:
		return "extend"
	case RolloverBody:
		return "body"
	}
	return fmt.Sprintf("RolloverPolicy(%d)", int(p))
}

// ParseRolloverPolicy parses "extend" or "body".
func ParseRolloverPolicy(s string) (RolloverPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extend", "":
		return RolloverExtend, nil
	case "body":
		return RolloverBody, nil
	}
	return RolloverExtend, fmt.Errorf("unknown subsection rollover policy %q (want extend or body)", s)
}

func (p RolloverPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *RolloverPolicy) UnmarshalText(b []byte) error {
	v, err := ParseRolloverPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Options tunes outline construction.
type Options struct {
	Rollover RolloverPolicy
	// MergeAdjacentEmphasis coalesces adjacent spans of equal emphasis
	// before rendering, so a bold word split over several runs becomes one
	// term instead of several.
	MergeAdjacentEmphasis bool
}

var letterPrefixRe = regexp.MustCompile(`^([a-z])\.[\s\p{Zs}]+`)

// Builder classifies paragraphs one at a time into outline lines. It looks
// back at the previously emitted line only.
type Builder struct {
	headers *HeaderSet
	opts    Options

	section int
	prev    Line
	hasPrev bool
}

func NewBuilder(headers *HeaderSet, opts Options) *Builder {
	return &Builder{headers: headers, opts: opts}
}

// Build runs a fresh Builder over paragraphs. Blank paragraphs are skipped;
// every other paragraph produces exactly one line.
func Build(paragraphs []document.Paragraph, headers *HeaderSet, opts Options) []Line {
	b := NewBuilder(headers, opts)
	lines := make([]Line, 0, len(paragraphs))
	for _, p := range paragraphs {
		if l, ok := b.Add(p); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

// Add classifies p and returns its line. ok is false for blank paragraphs,
// which leave the builder state untouched.
func (b *Builder) Add(p document.Paragraph) (line Line, ok bool) {
	if p.IsBlank() {
		return Line{}, false
	}
	if b.opts.MergeAdjacentEmphasis {
		p = p.Coalesce()
	}
	line = b.classify(p)
	b.prev, b.hasPrev = line, true
	return line, true
}

// Section returns the current section number (0 before the first header).
func (b *Builder) Section() int {
	return b.section
}

func (b *Builder) classify(p document.Paragraph) Line {
	raw := p.Text()
	text := strings.TrimSpace(raw)

	// 1. Header match.
	if _, ok := b.headers.Match(text); ok {
		b.section++
		return Line{Kind: KindSection, Section: b.section, Spans: copySpans(p.Spans)}
	}

	// 2. Explicit letter prefix; the letter is taken verbatim.
	if m := letterPrefixRe.FindStringSubmatch(text); m != nil {
		lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
		return Line{
			Kind:       KindSubsection,
			Section:    b.section,
			Subsection: m[1],
			Spans:      dropPrefix(p.Spans, lead+len(m[0])),
		}
	}

	if b.section > 0 && b.hasPrev {
		switch {
		// 3. First paragraph after this section's header.
		case b.prev.Kind == KindSection && b.prev.Section == b.section:
			return Line{Kind: KindSubsection, Section: b.section, Subsection: "a", Spans: copySpans(p.Spans)}

		// 4. Continue lettering after a subsection.
		case b.prev.Kind == KindSubsection:
			if b.opts.Rollover == RolloverBody && b.prev.Subsection == "z" {
				break
			}
			return Line{
				Kind:       KindSubsection,
				Section:    b.section,
				Subsection: nextSubsection(b.prev.Subsection),
				Spans:      copySpans(p.Spans),
			}
		}
	}

	// 5. Fallback.
	return Line{Kind: KindBody, Section: b.section, Spans: copySpans(p.Spans)}
}

// dropPrefix removes the first n bytes of text from spans, keeping the
// emphasis of whatever remains.
func dropPrefix(spans []document.Span, n int) []document.Span {
	out := make([]document.Span, 0, len(spans))
	for _, s := range spans {
		if n >= len(s.Text) {
			n -= len(s.Text)
			continue
		}
		s.Text = s.Text[n:]
		n = 0
		out = append(out, s)
	}
	return out
}

func copySpans(spans []document.Span) []document.Span {
	out := make([]document.Span, len(spans))
	copy(out, spans)
	return out
}
