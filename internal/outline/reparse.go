package outline

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sectionLineRe    = regexp.MustCompile(`^(\d+)\.[\s\p{Zs}]+`)
	subsectionLineRe = regexp.MustCompile(`^[\s\p{Zs}]*([a-z]+)\.[\s\p{Zs}]+`)
)

// ParseLines recovers lines from rendered outline text, such as a saved
// outline file. Position is re-derived from the line prefixes. Body lines
// carry only their section, as built lines do; Extract attributes them to
// the running subsection. Blank strings are skipped.
func ParseLines(rendered []string) []Line {
	lines := make([]Line, 0, len(rendered))
	section := 0
	for _, raw := range rendered {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if m := sectionLineRe.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				section = n
				lines = append(lines, Line{Kind: KindSection, Section: n, Spans: ParseSpans(raw[len(m[0]):])})
				continue
			}
		}
		if !strings.HasPrefix(raw, bodyIndent) {
			if m := subsectionLineRe.FindStringSubmatch(raw); m != nil {
				lines = append(lines, Line{
					Kind:       KindSubsection,
					Section:    section,
					Subsection: m[1],
					Spans:      ParseSpans(raw[len(m[0]):]),
				})
				continue
			}
		}
		lines = append(lines, Line{
			Kind:    KindBody,
			Section: section,
			Spans:   ParseSpans(strings.TrimPrefix(raw, bodyIndent)),
		})
	}
	return lines
}

// ExtractText extracts terms from rendered outline text.
func ExtractText(rendered []string, opts ExtractOptions) []Term {
	return Extract(ParseLines(rendered), opts)
}
