package headers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrMalformedResponse is returned when a model reply holds no JSON array
// of strings.
var ErrMalformedResponse = errors.New("malformed header response")

var headerArrayRe = regexp.MustCompile(`\[\s*"[^"]*"(?:\s*,\s*"[^"]*")*\s*\]`)

// ParseHeaders pulls a JSON array of strings out of a model reply. It
// accepts replies wrapped in code fences or surrounded by prose, and
// single-quoted arrays.
func ParseHeaders(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if _, after, ok := strings.Cut(s, "```json"); ok {
		s, _, _ = strings.Cut(after, "```")
	} else if _, after, ok := strings.Cut(s, "```"); ok {
		s, _, _ = strings.Cut(after, "```")
	}
	s = strings.TrimSpace(s)
	if m := headerArrayRe.FindString(s); m != "" {
		s = m
	}

	var out []string
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out, nil
	}
	s = strings.ReplaceAll(s, "'", `"`)
	if m := headerArrayRe.FindString(s); m != "" {
		s = m
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(raw, 200))
	}
	return out, nil
}

const maxHeaderLen = 200

// CleanHeaders trims headers and drops empty, overlong, duplicate and
// instruction-like entries, keeping first-seen order.
func CleanHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" || utf8.RuneCountInString(h) > maxHeaderLen {
			continue
		}
		if injectionPattern.MatchString(h) || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`forget\s+(everything|all)|new\s+instructions)`,
)
