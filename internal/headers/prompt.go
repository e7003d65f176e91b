package headers

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/chunker"
)

const SystemPrompt = `You are a document analysis assistant. Your task is to identify section headers in the document.`

const DiscoveryPrompt = `Below is the text of a document. Please identify the main section headers that divide this document into logical parts. Return ONLY a JSON array of strings containing ONLY the header text.

Rules:
- Copy each header exactly as it appears in the text, one line per header
- Keep the order in which the headers appear
- Do not include numbering that is not part of the line itself
- Return an empty array [] if the text has no headers

Example: ["Introduction", "Methods", "Results", "Discussion"]. Don't include any explanations, just the JSON array.`

// BuildPrompt creates the user prompt for one window of a document.
func BuildPrompt(docTitle string, w chunker.Window, total int) string {
	var sb strings.Builder
	sb.WriteString(DiscoveryPrompt)
	sb.WriteString("\n\n---\n")
	if docTitle != "" {
		sb.WriteString(fmt.Sprintf("Document: %q\n", docTitle))
	}
	if total > 1 {
		sb.WriteString(fmt.Sprintf("Part %d of %d\n", w.Index+1, total))
	}
	sb.WriteString("---\n")
	sb.WriteString(w.Text)
	return sb.String()
}
