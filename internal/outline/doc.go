// Package outline turns styled paragraphs into a numbered outline of
// sections and lettered subsections, and extracts the emphasized phrases of
// each subsection.
//
// Building is a single pass with one line of lookback: a paragraph matching
// the header set opens a new numbered section; a paragraph starting with an
// explicit "x. " prefix becomes subsection x; otherwise the first paragraph
// after a header is subsection "a" and each following paragraph takes the
// next letter. Paragraphs before the first header are body lines.
//
// Lines carry their section and subsection as fields. Rendering to the
// "1. ", "   a. ", "      " text form, with emphasized spans wrapped in '*',
// happens only at output time, and ParseLines reads that form back.
package outline
