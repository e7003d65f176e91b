// Package chunker splits document text into windows small enough for one
// header-discovery request.
package chunker

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target window size in tokens.
	ChunkOverlap int // Overlap between consecutive windows in tokens.
	MinChunk     int // A trailing window smaller than this is folded into the previous one.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    6000,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// Window is a contiguous run of paragraphs. Paragraph boundaries are never
// split unless one paragraph alone exceeds ChunkSize.
type Window struct {
	Index int
	Text  string // Trimmed paragraph texts joined by newlines.
	First int    // Index of the first paragraph in the document.
	Last  int    // Index of the last paragraph in the document.
}

type line struct {
	text   string
	idx    int
	tokens int
}

// Windows splits the non-blank paragraphs of doc into windows. A document
// that fits in one window yields exactly one.
func Windows(doc *document.Document, cfg Config) []Window {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 6000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var lines []line
	for i, p := range doc.Paragraphs {
		t := strings.TrimSpace(p.Text())
		if t == "" {
			continue
		}
		if tokens := EstimateTokens(t); tokens > cfg.ChunkSize {
			for _, part := range splitBySentences(t, cfg.ChunkSize) {
				lines = append(lines, line{text: part, idx: i, tokens: EstimateTokens(part)})
			}
			continue
		}
		lines = append(lines, line{text: t, idx: i, tokens: EstimateTokens(t)})
	}
	if len(lines) == 0 {
		return nil
	}

	var (
		windows []Window
		cur     []line
		tokens  int
		carried int // leading lines of cur repeated from the previous window
	)
	for _, l := range lines {
		if tokens+l.tokens > cfg.ChunkSize && len(cur) > carried {
			windows = append(windows, newWindow(len(windows), cur))
			cur, tokens = overlapTail(cur, cfg.ChunkOverlap)
			carried = len(cur)
		}
		cur = append(cur, l)
		tokens += l.tokens
	}

	fresh := cur[carried:]
	if len(fresh) == 0 {
		return windows
	}
	if n := len(windows); n > 0 && tokens-sumTokens(cur[:carried]) < cfg.MinChunk {
		windows[n-1] = appendLines(windows[n-1], fresh)
		return windows
	}
	return append(windows, newWindow(len(windows), cur))
}

func newWindow(index int, lines []line) Window {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	return Window{
		Index: index,
		Text:  strings.Join(texts, "\n"),
		First: lines[0].idx,
		Last:  lines[len(lines)-1].idx,
	}
}

func appendLines(w Window, lines []line) Window {
	var sb strings.Builder
	sb.WriteString(w.Text)
	for _, l := range lines {
		sb.WriteByte('\n')
		sb.WriteString(l.text)
		w.Last = l.idx
	}
	w.Text = sb.String()
	return w
}

func sumTokens(lines []line) int {
	n := 0
	for _, l := range lines {
		n += l.tokens
	}
	return n
}

// overlapTail returns the trailing lines of cur totalling at most
// overlapTokens, to seed the next window.
func overlapTail(cur []line, overlapTokens int) ([]line, int) {
	if overlapTokens <= 0 {
		return nil, 0
	}
	start, tokens := len(cur), 0
	for start > 0 && tokens+cur[start-1].tokens <= overlapTokens {
		start--
		tokens += cur[start].tokens
	}
	// Never carry the whole window forward.
	if start == 0 {
		return nil, 0
	}
	tail := make([]line, len(cur)-start)
	copy(tail, cur[start:])
	return tail, tokens
}

// splitBySentences breaks a large paragraph into sentence-based parts.
func splitBySentences(text string, targetTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)
		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
