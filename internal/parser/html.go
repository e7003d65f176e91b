package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Block elements delimit paragraphs; text
// inside <b> or <strong> becomes an emphasized span.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &document.Document{Title: titleFromFilename(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	w := &htmlWalker{doc: doc}
	if body := findBody(root); body != nil {
		w.walk(body)
	} else {
		w.walk(root)
	}
	w.flush()
	return doc, nil
}

type htmlWalker struct {
	doc   *document.Document
	cur   paragraphBuilder
	style string
	bold  int
}

func (w *htmlWalker) flush() {
	if para, ok := w.cur.paragraph(w.style); ok {
		w.doc.Paragraphs = append(w.doc.Paragraphs, para)
	}
	w.style = ""
}

func (w *htmlWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.write(n.Data, w.bold > 0)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "head", "noscript", "template":
			return
		case "br", "hr":
			w.flush()
			return
		case "b", "strong":
			w.bold++
			defer func() { w.bold-- }()
		}
		if isBlock(n.Data) {
			w.flush()
			if level := headingLevel(n.Data); level > 0 {
				w.style = fmt.Sprintf("Heading%d", level)
			}
			defer w.flush()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "dl", "dt", "dd", "table", "tr", "td", "th",
		"blockquote", "pre", "section", "article", "main", "aside", "figure", "figcaption",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
