package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_BoldAndBlocks(t *testing.T) {
	input := `<html><head><title>Guide</title><style>p{}</style></head>
<body>
<nav>skip me</nav>
<h1>Overview</h1>
<p>The <b>first</b> term and
   the <strong>second  one</strong>.</p>
<div>loose text<p>nested</p>tail</div>
<ul><li>a. <b>item</b></li></ul>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", doc.Title)
	}

	want := []string{
		"Overview",
		"The first term and the second one.",
		"loose text",
		"nested",
		"tail",
		"a. item",
	}
	if len(doc.Paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %+v", len(want), len(doc.Paragraphs), doc.Paragraphs)
	}
	for i, w := range want {
		if got := doc.Paragraphs[i].Text(); got != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, got)
		}
	}
	if doc.Paragraphs[0].Style != "Heading1" {
		t.Errorf("expected Heading1 style, got %q", doc.Paragraphs[0].Style)
	}

	spans := doc.Paragraphs[1].Spans
	var bold []string
	for _, s := range spans {
		if s.Emphasized {
			bold = append(bold, s.Text)
		}
	}
	if len(bold) != 2 || bold[0] != "first" || bold[1] != "second one" {
		t.Errorf("expected [first second one], got %q", bold)
	}
	if !doc.Paragraphs[5].HasEmphasis() {
		t.Errorf("expected list item to carry emphasis")
	}
}

func TestHTMLParser_TitleFallback(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<p>hi</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", doc.Title)
	}
}
