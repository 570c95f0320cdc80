package lint

import "regexp"

// Level is the severity of a rule.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
)

// Category groups rules by how opinionated they are.
type Category string

const (
	CategoryStrict        Category = "strict"
	CategorySuggestion    Category = "suggestion"
	CategoryControversial Category = "controversial"
)

// Rule is a static lint rule definition. Rules are registered once at
// process start and never mutated.
type Rule struct {
	ID               string   `json:"id"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Level            Level    `json:"level"`
	Category         Category `json:"category"`
	EnabledByDefault bool     `json:"enabled_by_default"`
	Autofix          bool     `json:"autofix"`

	detect detectFunc
	fix    fixFunc
}

// detectFunc scans text and returns raw matches with byte offsets.
type detectFunc func(text string) []match

// fixFunc applies the rule's correction. The whitelist is only consulted
// by fixes that use the protect/restore technique.
type fixFunc func(text string, whitelist []string) string

// match is one raw detection with byte offsets into the scanned text.
type match struct {
	start      int
	end        int
	excerpt    string
	suggestion string
}

// cjkRange is the Unicode CJK Unified Ideographs block.
const cjkRange = `\x{4e00}-\x{9fff}`

var (
	reCJKThenLatin  = regexp.MustCompile(`[` + cjkRange + `][A-Za-z]`)
	reLatinThenCJK  = regexp.MustCompile(`[A-Za-z][` + cjkRange + `]`)
	reCJKThenDigit  = regexp.MustCompile(`[` + cjkRange + `][0-9]`)
	reDigitThenCJK  = regexp.MustCompile(`[0-9][` + cjkRange + `]`)
	reDigitUnit     = regexp.MustCompile(`[0-9][A-Za-z]+`)
	reSpaceBefore   = regexp.MustCompile(`\s+[，。！？、；：）】」』]`)
	reSpaceAfter    = regexp.MustCompile(`[（【「『]\s+`)
	reEllipsis      = regexp.MustCompile(`\.{3,}|。{3,}|…{3,}|……[^\s\p{P}]`)
	reDashTight     = regexp.MustCompile(`[^\s—]——|——[^\s—]|-{2}`)
	reFullWidthNum  = regexp.MustCompile(`[\x{ff10}-\x{ff19}]`)
	reRepeatedPunct = regexp.MustCompile(`[!?！？。]{2,}`)
	reMixedPunct    = regexp.MustCompile(`[` + cjkRange + `][!?,.:;]|[!?,.:;][` + cjkRange + `]`)
	reCurlyQuote    = regexp.MustCompile(`[\x{201c}\x{201d}\x{2018}\x{2019}]`)
	reEmotionPunct  = regexp.MustCompile(`[!?！？]{3,}`)
)

// unitTokens is the recognized unit vocabulary (lower-cased). A single
// table feeds both detection and fix so the two can never drift.
var unitTokens = map[string]bool{
	"b": true, "kb": true, "mb": true, "gb": true, "tb": true, "pb": true,
	"bps": true, "kbps": true, "mbps": true, "gbps": true,
	"hz": true, "khz": true, "mhz": true, "ghz": true,
	"g": true, "kg": true, "mg": true, "t": true,
	"mm": true, "cm": true, "m": true, "km": true,
	"ms": true, "s": true, "min": true, "h": true,
	"w": true, "kw": true, "mw": true,
	"v": true, "kv": true, "mv": true,
	"a": true, "ma": true,
}

// correction is one entry of a term-correction table.
type correction struct {
	pattern   *regexp.Regexp
	canonical string
}

func newCorrection(term, canonical string) correction {
	return correction{
		pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
		canonical: canonical,
	}
}

// properNouns maps sloppy casings to their canonical spellings.
var properNouns = []correction{
	newCorrection("github", "GitHub"),
	newCorrection("javascript", "JavaScript"),
	newCorrection("typescript", "TypeScript"),
	newCorrection("python", "Python"),
	newCorrection("macos", "macOS"),
	newCorrection("ios", "iOS"),
	newCorrection("iphone", "iPhone"),
	newCorrection("android", "Android"),
	newCorrection("wifi", "Wi-Fi"),
	newCorrection("chatgpt", "ChatGPT"),
	newCorrection("youtube", "YouTube"),
	newCorrection("node.js", "Node.js"),
}

// abbreviations maps lazy shorthand to the full expression.
var abbreviations = []correction{
	newCorrection("pls", "please"),
	newCorrection("plz", "please"),
	newCorrection("thx", "thanks"),
	newCorrection("u", "you"),
	newCorrection("btw", "by the way"),
	newCorrection("asap", "as soon as possible"),
}

// rules is the catalog in registration order. The order is a contract:
// whole-draft fixes fold over it, and lint ties on equal start offsets
// break by it.
var rules = []Rule{
	{
		ID:               "R001",
		Label:            "CJK/Latin spacing",
		Description:      "Insert a space between adjacent CJK and Latin characters",
		Level:            LevelError,
		Category:         CategoryStrict,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reCJKThenLatin, reLatinThenCJK),
		fix:              fixCJKLatinSpacing,
	},
	{
		ID:               "R002",
		Label:            "CJK/digit spacing",
		Description:      "Insert a space between adjacent CJK characters and ASCII digits",
		Level:            LevelError,
		Category:         CategoryStrict,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reCJKThenDigit, reDigitThenCJK),
		fix:              fixCJKDigitSpacing,
	},
	{
		ID:               "R003",
		Label:            "Number/unit spacing",
		Description:      "Insert a space between a number and a recognized unit token",
		Level:            LevelWarn,
		Category:         CategoryStrict,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           detectDigitUnit,
		fix:              fixDigitUnit,
	},
	{
		ID:               "R004",
		Label:            "Full-width punctuation spacing",
		Description:      "Remove stray whitespace around full-width punctuation",
		Level:            LevelError,
		Category:         CategoryStrict,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reSpaceBefore, reSpaceAfter),
		fix:              fixPunctSpacing,
	},
	{
		ID:               "R005",
		Label:            "Ellipsis",
		Description:      "Normalize dotted ellipses to the canonical glyph with trailing space",
		Level:            LevelWarn,
		Category:         CategorySuggestion,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reEllipsis),
		fix:              fixEllipsis,
	},
	{
		ID:               "R006",
		Label:            "Dash",
		Description:      "Normalize dashes to a space-padded em-dash pair",
		Level:            LevelWarn,
		Category:         CategorySuggestion,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reDashTight),
		fix:              fixDash,
	},
	{
		ID:               "R007",
		Label:            "Full-width digits",
		Description:      "Replace full-width digits with their ASCII equivalents",
		Level:            LevelWarn,
		Category:         CategoryStrict,
		EnabledByDefault: true,
		Autofix:          true,
		detect:           patternDetector(reFullWidthNum),
		fix:              fixFullWidthDigits,
	},
	{
		ID:               "R008",
		Label:            "Repeated punctuation",
		Description:      "Avoid runs of repeated terminal punctuation",
		Level:            LevelWarn,
		Category:         CategorySuggestion,
		EnabledByDefault: true,
		detect:           patternDetector(reRepeatedPunct),
	},
	{
		ID:               "R009",
		Label:            "Mixed punctuation width",
		Description:      "Avoid half-width punctuation adjacent to CJK text",
		Level:            LevelWarn,
		Category:         CategorySuggestion,
		EnabledByDefault: true,
		detect:           patternDetector(reMixedPunct),
	},
	{
		ID:               "R010",
		Label:            "Curly quotes",
		Description:      "Avoid typographic quote glyphs",
		Level:            LevelWarn,
		Category:         CategoryControversial,
		EnabledByDefault: false,
		detect:           patternDetector(reCurlyQuote),
	},
	{
		ID:               "R011",
		Label:            "Emotion punctuation",
		Description:      "Avoid high-intensity punctuation runs",
		Level:            LevelWarn,
		Category:         CategoryControversial,
		EnabledByDefault: false,
		detect:           patternDetector(reEmotionPunct),
	},
	{
		ID:               "R012",
		Label:            "Proper-noun casing",
		Description:      "Use canonical casing for well-known product and project names",
		Level:            LevelWarn,
		Category:         CategorySuggestion,
		EnabledByDefault: true,
		detect:           correctionDetector(properNouns),
	},
	{
		ID:               "R013",
		Label:            "Lazy abbreviations",
		Description:      "Spell out informal shorthand",
		Level:            LevelWarn,
		Category:         CategoryControversial,
		EnabledByDefault: false,
		detect:           correctionDetector(abbreviations),
	},
}

// Catalog returns the full rule catalog in registration order.
func Catalog() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleByID looks up a rule definition. Returns nil for unknown ids.
func RuleByID(id string) *Rule {
	for i := range rules {
		if rules[i].ID == id {
			return &rules[i]
		}
	}
	return nil
}

// DefaultState returns the default enabled-state mapping, one entry per
// catalog rule.
func DefaultState() map[string]bool {
	state := make(map[string]bool, len(rules))
	for _, r := range rules {
		state[r.ID] = r.EnabledByDefault
	}
	return state
}

// patternDetector builds a detector that reports every match of the
// given patterns, in pattern order.
func patternDetector(patterns ...*regexp.Regexp) detectFunc {
	return func(text string) []match {
		var out []match
		for _, re := range patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				out = append(out, match{
					start:   loc[0],
					end:     loc[1],
					excerpt: text[loc[0]:loc[1]],
				})
			}
		}
		return out
	}
}

// detectDigitUnit reports a digit immediately followed by a letter run
// only when the run (lower-cased) is in the unit vocabulary.
func detectDigitUnit(text string) []match {
	var out []match
	for _, loc := range reDigitUnit.FindAllStringIndex(text, -1) {
		m := text[loc[0]:loc[1]]
		if !unitTokens[lowerASCII(m[1:])] {
			continue
		}
		out = append(out, match{start: loc[0], end: loc[1], excerpt: m})
	}
	return out
}

// correctionDetector emits a match with a canonical-form suggestion for
// every table entry whose matched text differs from the canonical form.
func correctionDetector(table []correction) detectFunc {
	return func(text string) []match {
		var out []match
		for _, c := range table {
			for _, loc := range c.pattern.FindAllStringIndex(text, -1) {
				m := text[loc[0]:loc[1]]
				if m == c.canonical {
					continue
				}
				out = append(out, match{
					start:      loc[0],
					end:        loc[1],
					excerpt:    m,
					suggestion: c.canonical,
				})
			}
		}
		return out
	}
}

// lowerASCII lower-cases A-Z without touching other bytes.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
