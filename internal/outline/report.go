package outline

import (
	"sort"
	"strconv"
	"strings"
)

// FormatLines joins rendered lines with newlines.
func FormatLines(lines []Line) string {
	return strings.Join(Lines(lines), "\n")
}

// FormatTerms renders one "<section_id>: <text>" entry per line, in
// extraction order.
func FormatTerms(terms []Term) string {
	var sb strings.Builder
	for _, t := range terms {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SectionGroup collects the terms of one section.
type SectionGroup struct {
	Section     int               `json:"section" yaml:"section"`
	Subsections []SubsectionGroup `json:"subsections" yaml:"subsections"`
}

// SubsectionGroup collects the terms of one subsection. Subsection is empty
// for terms taken from the section line itself.
type SubsectionGroup struct {
	Subsection string   `json:"subsection" yaml:"subsection"`
	SectionID  string   `json:"section_id" yaml:"section_id"`
	Terms      []string `json:"terms" yaml:"terms"`
}

// GroupTerms groups terms by section and subsection. Sections are ordered
// numerically and subsections in assignment order; terms keep their
// extraction order within a group.
func GroupTerms(terms []Term) []SectionGroup {
	bySection := make(map[int]map[string][]string)
	for _, t := range terms {
		subs, ok := bySection[t.Section]
		if !ok {
			subs = make(map[string][]string)
			bySection[t.Section] = subs
		}
		subs[t.Subsection] = append(subs[t.Subsection], t.Text)
	}

	sections := make([]int, 0, len(bySection))
	for s := range bySection {
		sections = append(sections, s)
	}
	sort.Ints(sections)

	groups := make([]SectionGroup, 0, len(sections))
	for _, s := range sections {
		subs := bySection[s]
		ids := make([]string, 0, len(subs))
		for id := range subs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return subsectionLess(ids[i], ids[j]) })

		g := SectionGroup{Section: s}
		for _, id := range ids {
			g.Subsections = append(g.Subsections, SubsectionGroup{
				Subsection: id,
				SectionID:  strconv.Itoa(s) + id,
				Terms:      subs[id],
			})
		}
		groups = append(groups, g)
	}
	return groups
}

// FormatReport renders groups for reading:
//
//	SECTION 1
//	  1a:
//	    • term
func FormatReport(groups []SectionGroup) string {
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString("SECTION ")
		sb.WriteString(strconv.Itoa(g.Section))
		sb.WriteByte('\n')
		for _, sub := range g.Subsections {
			sb.WriteString("  ")
			sb.WriteString(sub.SectionID)
			sb.WriteString(":\n")
			for _, t := range sub.Terms {
				sb.WriteString("    • ")
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatGrouped renders "<section_id>: <text>" lines in grouped order.
func FormatGrouped(groups []SectionGroup) string {
	var sb strings.Builder
	for _, g := range groups {
		for _, sub := range g.Subsections {
			for _, t := range sub.Terms {
				sb.WriteString(sub.SectionID)
				sb.WriteString(": ")
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
