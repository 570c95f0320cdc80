package lint

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ellipsis = "……"
	emDash   = "——"
)

var (
	reMultiSpace     = regexp.MustCompile(` {2,}`)
	reDotsRun        = regexp.MustCompile(`\.{3,}`)
	reFWDotsRun      = regexp.MustCompile(`。{3,}`)
	reEllipsisRun    = regexp.MustCompile(`…{3,}`)
	reEllipsisTight  = regexp.MustCompile(`(……)([^\s\p{P}])`)
	reDashPadded     = regexp.MustCompile(`[ \t]*——[ \t]*`)
	reDoubleHyphen   = regexp.MustCompile(`[ \t]*-{2,}[ \t]*`)
	reSpaceClosing   = regexp.MustCompile(`\s+([，。！？、；：）】」』])`)
	reOpeningSpace   = regexp.MustCompile(`([（【「『])\s+`)
	reCJKLatinInsert = []*regexp.Regexp{
		regexp.MustCompile(`([` + cjkRange + `])([A-Za-z])`),
		regexp.MustCompile(`([A-Za-z])([` + cjkRange + `])`),
	}
	reCJKDigitInsert = []*regexp.Regexp{
		regexp.MustCompile(`([` + cjkRange + `])([0-9])`),
		regexp.MustCompile(`([0-9])([` + cjkRange + `])`),
	}
)

// Fix applies a single rule's correction to text. Unknown rule ids and
// rules without a defined fix return the input unchanged.
func Fix(text, ruleID string, whitelist []string) string {
	rule := RuleByID(ruleID)
	if rule == nil || rule.fix == nil {
		return text
	}
	return rule.fix(text, whitelist)
}

// FixAll folds over the catalog in registration order, applying every
// enabled-and-autofixable rule's fix in sequence. Later rules see the
// output of earlier ones; the order is part of the contract.
func FixAll(text string, state map[string]bool, whitelist []string) string {
	for _, rule := range rules {
		if !state[rule.ID] || !rule.Autofix || rule.fix == nil {
			continue
		}
		text = rule.fix(text, whitelist)
	}
	return text
}

// fixCJKLatinSpacing inserts a space at CJK/Latin boundaries. Whitelist
// terms are masked with placeholder tokens first so the insertion cannot
// corrupt them, then restored verbatim.
func fixCJKLatinSpacing(text string, whitelist []string) string {
	masked, restore := protectTerms(text, whitelist)
	masked = insertBoundarySpaces(masked, reCJKLatinInsert)
	return restore(masked)
}

// fixCJKDigitSpacing inserts a space at CJK/digit boundaries. Digits do
// not collide with whitelist terms, so no masking is needed.
func fixCJKDigitSpacing(text string, _ []string) string {
	return insertBoundarySpaces(text, reCJKDigitInsert)
}

func insertBoundarySpaces(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, "$1 $2")
	}
	return reMultiSpace.ReplaceAllString(text, " ")
}

// fixDigitUnit inserts a space before a unit token only when the token
// is in the recognized vocabulary.
func fixDigitUnit(text string, _ []string) string {
	return reDigitUnit.ReplaceAllStringFunc(text, func(m string) string {
		if !unitTokens[lowerASCII(m[1:])] {
			return m
		}
		return m[:1] + " " + m[1:]
	})
}

// fixPunctSpacing removes whitespace before closing and after opening
// full-width punctuation.
func fixPunctSpacing(text string, _ []string) string {
	text = reSpaceClosing.ReplaceAllString(text, "$1")
	return reOpeningSpace.ReplaceAllString(text, "$1")
}

// fixEllipsis normalizes dotted runs to the canonical ellipsis and
// ensures exactly one space follows it before a non-whitespace,
// non-punctuation character.
func fixEllipsis(text string, _ []string) string {
	text = reDotsRun.ReplaceAllString(text, ellipsis)
	text = reFWDotsRun.ReplaceAllString(text, ellipsis)
	text = reEllipsisRun.ReplaceAllString(text, ellipsis)
	return reEllipsisTight.ReplaceAllString(text, "$1 $2")
}

// fixDash normalizes padded em-dashes and ASCII double-hyphens to the
// canonical space-padded em-dash pair.
func fixDash(text string, _ []string) string {
	text = reDashPadded.ReplaceAllString(text, " "+emDash+" ")
	text = reDoubleHyphen.ReplaceAllString(text, " "+emDash+" ")
	return reMultiSpace.ReplaceAllString(text, " ")
}

// fixFullWidthDigits maps full-width digits to ASCII by the fixed
// codepoint offset.
func fixFullWidthDigits(text string, _ []string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return r - 0xfee0
		}
		return r
	}, text)
}

// protectTerms masks every whitelist term occurrence with an opaque
// placeholder and returns the masked text plus a restore function that
// exactly reverses the substitution. The delimiter is lengthened until
// it does not occur in the input, so collision-freedom is a verified
// precondition rather than an assumption.
func protectTerms(text string, terms []string) (string, func(string) string) {
	terms = CleanTerms(terms)
	if len(terms) == 0 {
		return text, func(s string) string { return s }
	}

	// Longer terms first so a term embedded in another is never split.
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	delim := "\x1f"
	for strings.Contains(text, delim) {
		delim += "\x1f"
	}

	tokens := make([]string, len(sorted))
	for i, term := range sorted {
		tokens[i] = delim + strconv.Itoa(i) + delim
		text = strings.ReplaceAll(text, term, tokens[i])
	}

	restore := func(s string) string {
		for i := len(sorted) - 1; i >= 0; i-- {
			s = strings.ReplaceAll(s, tokens[i], sorted[i])
		}
		return s
	}
	return text, restore
}
