package document

import "testing"

func TestParagraph_Text(t *testing.T) {
	p := Paragraph{Spans: []Span{{Text: "foo "}, {Text: "bar", Emphasized: true}, {Text: "."}}}
	if got := p.Text(); got != "foo bar." {
		t.Errorf("expected %q, got %q", "foo bar.", got)
	}
	if !p.HasEmphasis() {
		t.Error("expected paragraph to report emphasis")
	}
}

func TestParagraph_IsBlank(t *testing.T) {
	tests := []struct {
		p    Paragraph
		want bool
	}{
		{Paragraph{}, true},
		{Plain("   \t"), true},
		{Paragraph{Spans: []Span{{Text: " "}, {Text: "\n", Emphasized: true}}}, true},
		{Plain(" x "), false},
	}
	for i, tt := range tests {
		if got := tt.p.IsBlank(); got != tt.want {
			t.Errorf("case %d: expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestParagraph_Coalesce(t *testing.T) {
	p := Paragraph{Style: "Normal", Spans: []Span{
		{Text: "Hel", Emphasized: true},
		{Text: "lo", Emphasized: true},
		{Text: ""},
		{Text: " world"},
		{Text: "!"},
	}}
	got := p.Coalesce()
	if len(got.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(got.Spans), got.Spans)
	}
	if got.Spans[0] != (Span{Text: "Hello", Emphasized: true}) {
		t.Errorf("unexpected first span %+v", got.Spans[0])
	}
	if got.Spans[1] != (Span{Text: " world!"}) {
		t.Errorf("unexpected second span %+v", got.Spans[1])
	}
	if got.Style != "Normal" {
		t.Errorf("expected style to survive, got %q", got.Style)
	}
	// The original is untouched.
	if len(p.Spans) != 5 {
		t.Errorf("expected original spans to be unchanged, got %d", len(p.Spans))
	}
}

func TestDocument_RawText(t *testing.T) {
	d := &Document{Paragraphs: []Paragraph{
		Plain("  Intro  "),
		Plain(""),
		{Spans: []Span{{Text: "a. "}, {Text: "foo", Emphasized: true}}},
		Plain("   "),
	}}
	want := "Intro\na. foo"
	if got := d.RawText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if n := d.NonBlank(); n != 2 {
		t.Errorf("expected 2 non-blank paragraphs, got %d", n)
	}
}
