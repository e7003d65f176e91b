package outline

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
)

// Term is an emphasized phrase tagged with the outline position it occurs in.
type Term struct {
	Section    int    `json:"section" yaml:"section"`
	Subsection string `json:"subsection" yaml:"subsection"`
	SectionID  string `json:"section_id" yaml:"section_id"`
	Text       string `json:"text" yaml:"text"`
}

// String returns the "<section_id>: <text>" form.
func (t Term) String() string {
	return t.SectionID + ": " + t.Text
}

// ExtractOptions tunes term extraction.
type ExtractOptions struct {
	// IncludeSectionTerms also scans section lines. Their terms carry the
	// bare section number as id (e.g. "2").
	IncludeSectionTerms bool
}

// Extract walks lines and returns every emphasized span with non-empty
// trimmed text that sits inside a section and subsection. A body line
// belongs to the subsection most recently opened in its section. It has no
// state across calls.
func Extract(lines []Line, opts ExtractOptions) []Term {
	var terms []Term
	section, sub := 0, ""
	for _, l := range lines {
		switch l.Kind {
		case KindSection:
			section, sub = l.Section, ""
			if opts.IncludeSectionTerms && section > 0 {
				terms = appendTerms(terms, section, "", l.Spans)
			}
			continue
		case KindSubsection:
			section, sub = l.Section, l.Subsection
		default:
			if l.Section != section {
				section, sub = l.Section, ""
			}
			if l.Subsection != "" {
				sub = l.Subsection
			}
		}
		if section > 0 && sub != "" {
			terms = appendTerms(terms, section, sub, l.Spans)
		}
	}
	return terms
}

func appendTerms(terms []Term, section int, subsection string, spans []document.Span) []Term {
	id := strconv.Itoa(section) + subsection
	for _, s := range spans {
		if !s.Emphasized {
			continue
		}
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		terms = append(terms, Term{
			Section:    section,
			Subsection: subsection,
			SectionID:  id,
			Text:       text,
		})
	}
	return terms
}

// Result is the output of one outline run.
type Result struct {
	Lines []Line `json:"lines"`
	Terms []Term `json:"terms"`
}

// Process builds the outline for paragraphs and extracts its terms.
func Process(paragraphs []document.Paragraph, headers *HeaderSet, opts Options, xopts ExtractOptions) Result {
	lines := Build(paragraphs, headers, opts)
	return Result{Lines: lines, Terms: Extract(lines, xopts)}
}

// Sections counts section lines.
func (r Result) Sections() int {
	n := 0
	for _, l := range r.Lines {
		if l.Kind == KindSection {
			n++
		}
	}
	return n
}
