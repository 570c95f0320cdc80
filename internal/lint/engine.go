package lint

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Issue is one detected violation. Offsets are half-open rune offsets
// into the scanned plain text. The ID is derived from the rule id, span,
// and matched text, so identical matches collide intentionally and
// re-renders stay stable.
type Issue struct {
	ID         string `json:"id"`
	RuleID     string `json:"rule_id"`
	Level      Level  `json:"level"`
	Message    string `json:"message"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Excerpt    string `json:"excerpt"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Lint runs every enabled rule against the plain text and returns all
// issues sorted ascending by start offset. Ties keep detection order
// (rule registration order, then match order). Whitelist terms never
// contribute issues: any match fully contained in a whitelisted term's
// span is dropped. An empty input yields an empty result; there is no
// error case.
func Lint(text string, state map[string]bool, whitelist []string) []Issue {
	spans := TermSpans(text, whitelist)

	var issues []Issue
	for _, rule := range rules {
		if !state[rule.ID] || rule.detect == nil {
			continue
		}
		for _, m := range rule.detect(text) {
			start := utf8.RuneCountInString(text[:m.start])
			end := utf8.RuneCountInString(text[:m.end])
			if ignored(spans, start, end) {
				continue
			}
			issues = append(issues, Issue{
				ID:         fmt.Sprintf("%s:%d:%d:%s", rule.ID, start, end, m.excerpt),
				RuleID:     rule.ID,
				Level:      rule.Level,
				Message:    rule.Description,
				Start:      start,
				End:        end,
				Excerpt:    m.excerpt,
				Suggestion: m.suggestion,
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Start < issues[j].Start
	})
	return issues
}
