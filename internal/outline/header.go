package outline

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MatchPolicy decides how a paragraph is compared against the header set.
// The two policies are not interchangeable: "Intro to Go" contains the
// header "Intro" but is not equal to it.
type MatchPolicy int

const (
	// MatchExact requires the trimmed paragraph text to equal a header.
	MatchExact MatchPolicy = iota
	// MatchSubstring requires the trimmed paragraph text to contain a header.
	MatchSubstring
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	}
	return fmt.Sprintf("MatchPolicy(%d)", int(p))
}

// ParseMatchPolicy parses "exact" or "substring".
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return MatchExact, nil
	case "substring", "contains":
		return MatchSubstring, nil
	}
	return MatchExact, fmt.Errorf("unknown header match policy %q (want exact or substring)", s)
}

func (p MatchPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *MatchPolicy) UnmarshalText(b []byte) error {
	v, err := ParseMatchPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// HeaderSet is a caller-supplied list of literal section headers together
// with the policy used to match paragraphs against it. A nil *HeaderSet
// matches nothing.
type HeaderSet struct {
	policy  MatchPolicy
	headers []string
	exact   map[string]struct{}
}

// NewHeaderSet trims and NFC-normalizes the headers, dropping empty entries
// and duplicates while keeping the first-seen order.
func NewHeaderSet(headers []string, policy MatchPolicy) *HeaderSet {
	hs := &HeaderSet{
		policy: policy,
		exact:  make(map[string]struct{}, len(headers)),
	}
	for _, h := range headers {
		h = normalize(h)
		if h == "" {
			continue
		}
		if _, dup := hs.exact[h]; dup {
			continue
		}
		hs.exact[h] = struct{}{}
		hs.headers = append(hs.headers, h)
	}
	return hs
}

// Match reports whether text is a section header, returning the header that
// matched. Under MatchSubstring the first header in list order wins.
func (hs *HeaderSet) Match(text string) (string, bool) {
	if hs == nil || len(hs.headers) == 0 {
		return "", false
	}
	text = normalize(text)
	if text == "" {
		return "", false
	}
	switch hs.policy {
	case MatchSubstring:
		for _, h := range hs.headers {
			if strings.Contains(text, h) {
				return h, true
			}
		}
	default:
		if _, ok := hs.exact[text]; ok {
			return text, true
		}
	}
	return "", false
}

// Headers returns the normalized headers in list order.
func (hs *HeaderSet) Headers() []string {
	if hs == nil {
		return nil
	}
	out := make([]string, len(hs.headers))
	copy(out, hs.headers)
	return out
}

func (hs *HeaderSet) Len() int {
	if hs == nil {
		return 0
	}
	return len(hs.headers)
}

func (hs *HeaderSet) Policy() MatchPolicy {
	if hs == nil {
		return MatchExact
	}
	return hs.policy
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
