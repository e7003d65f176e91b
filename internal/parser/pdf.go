package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Text is regrouped into lines by baseline;
// each line is one paragraph and glyphs set in a bold font face become
// emphasized spans. When the library cannot read the file and
// FallbackPdftotext is set, pdftotext output is used without emphasis.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc := &document.Document{Title: titleFromFilename(filename)}
	paras, err := extractPDFParagraphs(data)
	if err != nil && p.FallbackPdftotext {
		paras, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	doc.Paragraphs = paras
	return doc, nil
}

func extractPDFParagraphs(data []byte) (paras []document.Paragraph, err error) {
	// The library panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			paras, err = nil, fmt.Errorf("read pdf content: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		paras = append(paras, pdfPageParagraphs(page.Content().Text)...)
	}
	return paras, nil
}

// pdfLine is the glyphs sharing one baseline.
type pdfLine struct {
	y     float64
	texts []pdflib.Text
}

func pdfPageParagraphs(texts []pdflib.Text) []document.Paragraph {
	var lines []*pdfLine
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		tol := math.Max(t.FontSize*0.3, 1)
		var line *pdfLine
		for _, l := range lines {
			if math.Abs(l.y-t.Y) <= tol {
				line = l
				break
			}
		}
		if line == nil {
			line = &pdfLine{y: t.Y}
			lines = append(lines, line)
		}
		line.texts = append(line.texts, t)
	}

	// Top of the page first.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	paras := make([]document.Paragraph, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.texts, func(i, j int) bool { return l.texts[i].X < l.texts[j].X })

		var b paragraphBuilder
		var cur strings.Builder
		curBold := false
		end := math.Inf(-1)
		flush := func() {
			if cur.Len() > 0 {
				b.write(cur.String(), curBold)
				cur.Reset()
			}
		}
		for _, t := range l.texts {
			// The word gap belongs to the preceding run.
			if end != math.Inf(-1) && t.X-end > t.FontSize*0.2 {
				cur.WriteByte(' ')
			}
			if bold := isBoldFont(t.Font); bold != curBold {
				flush()
				curBold = bold
			}
			cur.WriteString(t.S)
			end = t.X + t.W
		}
		flush()
		if para, ok := b.paragraph(""); ok {
			paras = append(paras, para)
		}
	}
	return paras
}

// isBoldFont matches font names such as "Arial-BoldMT" or "ABCDEE+Calibri,Bold".
func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	for _, marker := range []string{"bold", "black", "heavy", "demi"} {
		if strings.Contains(n, marker) {
			return true
		}
	}
	return false
}

func extractPdftotext(data []byte) ([]document.Paragraph, error) {
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	var paras []document.Paragraph
	for _, line := range strings.Split(strings.ReplaceAll(string(out), "\f", "\n"), "\n") {
		var b paragraphBuilder
		b.write(line, false)
		if para, ok := b.paragraph(""); ok {
			paras = append(paras, para)
		}
	}
	return paras, nil
}
