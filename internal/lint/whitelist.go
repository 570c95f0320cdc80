package lint

import (
	"strings"
	"unicode/utf8"
)

// baseWhitelist contains terms that legitimately violate spacing or
// casing conventions and must never be flagged or rewritten.
var baseWhitelist = []string{
	"iOS",
	"iPhone",
	"iPad",
	"macOS",
	"iCloud",
	"AirPods",
	"GitHub",
	"TypeScript",
	"JavaScript",
	"Node.js",
	"Wi-Fi",
	"eSIM",
	"DaVinci",
}

// BaseWhitelist returns a copy of the built-in whitelist.
func BaseWhitelist() []string {
	out := make([]string, len(baseWhitelist))
	copy(out, baseWhitelist)
	return out
}

// Span is a half-open [Start, End) interval of rune offsets.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the [start, end) interval is fully inside
// this span.
func (s Span) Contains(start, end int) bool {
	return start >= s.Start && end <= s.End
}

// CleanTerms trims, deduplicates, and drops empty whitelist entries,
// preserving first-seen order.
func CleanTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// TermSpans returns the rune span of every literal (case-sensitive)
// occurrence of every term in text. Order is unspecified; consumers
// test containment, not order.
func TermSpans(text string, terms []string) []Span {
	var spans []Span
	for _, term := range CleanTerms(terms) {
		from := 0
		for {
			idx := strings.Index(text[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(term)
			spans = append(spans, Span{
				Start: utf8.RuneCountInString(text[:start]),
				End:   utf8.RuneCountInString(text[:end]),
			})
			from = end
		}
	}
	return spans
}

// ignored reports whether the [start, end) rune interval is fully
// contained in any of the given spans.
func ignored(spans []Span, start, end int) bool {
	for _, s := range spans {
		if s.Contains(start, end) {
			return true
		}
	}
	return false
}
