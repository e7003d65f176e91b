package outline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/document"
)

func TestExtract_SectionTerms(t *testing.T) {
	hs := NewHeaderSet([]string{"Scope"}, MatchSubstring)
	lines := Build(paras("The *Scope* header", "a *b*"), hs, Options{})

	assert.Len(t, Extract(lines, ExtractOptions{}), 1)

	terms := Extract(lines, ExtractOptions{IncludeSectionTerms: true})
	require.Len(t, terms, 2)
	assert.Equal(t, Term{Section: 1, SectionID: "1", Text: "Scope"}, terms[0])
	assert.Equal(t, "1a", terms[1].SectionID)
}

func TestExtract_SkipsWhitespaceEmphasis(t *testing.T) {
	hs := NewHeaderSet([]string{"Scope"}, MatchExact)
	lines := Build(paras("Scope", "x *  * y * z *"), hs, Options{})

	terms := Extract(lines, ExtractOptions{})
	require.Len(t, terms, 1)
	assert.Equal(t, "z", terms[0].Text)
}

func TestExtract_OrderFollowsLines(t *testing.T) {
	hs := NewHeaderSet([]string{"One", "Two"}, MatchExact)
	lines := Build(paras("One", "*p* and *q*", "*r*", "Two", "*s*"), hs, Options{})

	var got []string
	for _, term := range Extract(lines, ExtractOptions{}) {
		got = append(got, term.String())
	}
	assert.Equal(t, []string{"1a: p", "1a: q", "1b: r", "2a: s"}, got)
}

func TestExtract_BodyLinesFollowRunningSubsection(t *testing.T) {
	hs := NewHeaderSet([]string{"Scope"}, MatchExact)
	ps := append(paras("*early*"), rollover(27)...)
	lines := Build(ps, hs, Options{Rollover: RolloverBody})
	require.Equal(t, KindBody, lines[0].Kind)
	require.Equal(t, KindBody, lines[28].Kind)
	lines[28].Spans[0].Emphasized = true

	terms := Extract(lines, ExtractOptions{})
	require.Len(t, terms, 1)
	assert.Equal(t, "1z: item", terms[0].String())
}

func TestExtract_MatchesRenderedText(t *testing.T) {
	hs := NewHeaderSet([]string{"Scope", "Terms"}, MatchExact)
	ps := paras("*lead*", "Scope")
	for i := 0; i < 27; i++ {
		ps = append(ps, para("item *x*"))
	}
	ps = append(ps, paras("tail *late*", "c.\u00a0*again*", "*Terms*", "*p* and *q*", "d. *r*")...)

	for _, ro := range []RolloverPolicy{RolloverExtend, RolloverBody} {
		for _, merge := range []bool{false, true} {
			for _, sectionTerms := range []bool{false, true} {
				opts := Options{Rollover: ro, MergeAdjacentEmphasis: merge}
				xopts := ExtractOptions{IncludeSectionTerms: sectionTerms}
				name := fmt.Sprintf("%s/merge=%t/section=%t", ro, merge, sectionTerms)

				lines := Build(ps, hs, opts)
				direct := Extract(lines, xopts)
				assert.NotEmpty(t, direct, name)
				assert.Equal(t, direct, ExtractText(Lines(lines), xopts), name)

				parsed := ParseLines(Lines(lines))
				require.Len(t, parsed, len(lines), name)
				for i := range lines {
					assert.Equal(t, lines[i].Kind, parsed[i].Kind, name)
					assert.Equal(t, lines[i].Section, parsed[i].Section, name)
					assert.Equal(t, lines[i].Subsection, parsed[i].Subsection, name)
				}
			}
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	hs := NewHeaderSet([]string{"One", "Two"}, MatchExact)
	ps := paras("One", "*a* and *b*", "c. *d*", "Two", "*e*")
	merged := document.Paragraph{Spans: []document.Span{
		{Text: "Key", Emphasized: true},
		{Text: " Term", Emphasized: true},
		{Text: " text"},
	}}
	ps = append(ps, merged)

	for _, opts := range []Options{{}, {MergeAdjacentEmphasis: true}} {
		lines := Build(ps, hs, opts)
		first := Extract(lines, ExtractOptions{})
		second := Extract(lines, ExtractOptions{})
		require.NotEmpty(t, first)
		assert.Equal(t, first, second)
	}

	lines := Build(ps, hs, Options{MergeAdjacentEmphasis: true})
	terms := Extract(lines, ExtractOptions{})
	assert.Equal(t, "2b: Key Term", terms[len(terms)-1].String())
}

func TestProcess(t *testing.T) {
	hs := NewHeaderSet([]string{"One", "Two"}, MatchExact)
	res := Process(paras("One", "*x*", "Two"), hs, Options{}, ExtractOptions{})

	assert.Equal(t, 2, res.Sections())
	assert.Len(t, res.Lines, 3)
	require.Len(t, res.Terms, 1)
	assert.Equal(t, "1a: x", res.Terms[0].String())
}
