// Package counter measures post length against the platform limit
// using a pluggable weighing strategy.
package counter

import (
	"regexp"
	"unicode"
)

// CharLimit is the weighted length budget for a single post.
const CharLimit = 25000

// Weight is the result of weighing a text.
type Weight struct {
	// WeightedLength is the platform-weighted length of the text.
	WeightedLength int `json:"weightedLength"`
	// Permillage is the consumed share of the limit in thousandths.
	Permillage int `json:"permillage"`
}

// Weigher computes the weighted length of a text. Implementations
// must be pure: same text, same weight.
type Weigher interface {
	Weigh(text string) Weight
}

// Result reports a text measured against the limit.
type Result struct {
	Weight
	// Remaining may be negative when the text exceeds the limit.
	Remaining int  `json:"remaining"`
	Valid     bool `json:"valid"`
}

// Measure weighs a text with the given weigher and applies the limit.
// A nil weigher falls back to the default.
func Measure(text string, w Weigher) Result {
	if w == nil {
		w = DefaultWeigher{}
	}
	weight := w.Weigh(text)
	return Result{
		Weight:    weight,
		Remaining: CharLimit - weight.WeightedLength,
		Valid:     weight.WeightedLength <= CharLimit,
	}
}

// DefaultWeigher weighs URLs at a fixed cost, wide runes at two, and
// everything else at one.
type DefaultWeigher struct{}

// urlWeight is the fixed cost of any URL regardless of its length.
const urlWeight = 23

var reURL = regexp.MustCompile(`https?://[^\s]+`)

// Weigh implements Weigher.
func (DefaultWeigher) Weigh(text string) Weight {
	total := 0
	rest := text
	for {
		loc := reURL.FindStringIndex(rest)
		if loc == nil {
			break
		}
		total += weighRunes(rest[:loc[0]]) + urlWeight
		rest = rest[loc[1]:]
	}
	total += weighRunes(rest)

	return Weight{
		WeightedLength: total,
		Permillage:     total * 1000 / CharLimit,
	}
}

func weighRunes(s string) int {
	n := 0
	for _, r := range s {
		if isWide(r) {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// isWide reports whether a rune renders double-width: CJK ideographs,
// kana, Hangul, and full-width forms.
func isWide(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x115F: // Hangul jamo
		return true
	case r >= 0x2E80 && r <= 0x9FFF: // CJK radicals through ideographs
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r >= 0xF900 && r <= 0xFAFF: // compatibility ideographs
		return true
	case r >= 0xFE30 && r <= 0xFE4F: // vertical forms
		return true
	case r >= 0xFF00 && r <= 0xFF60: // full-width forms
		return true
	case r >= 0xFFE0 && r <= 0xFFE6:
		return true
	case r >= 0x20000 && r <= 0x2FFFD: // extension planes
		return true
	case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
		return true
	default:
		return false
	}
}
