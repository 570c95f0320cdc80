package richtext

// Mathematical alphanumeric plane offsets for styled rendering.
const (
	boldUpper       = 0x1D400
	boldLower       = 0x1D41A
	boldDigit       = 0x1D7CE
	italicUpper     = 0x1D434
	italicLower     = 0x1D44E
	boldItalicUpper = 0x1D468
	boldItalicLower = 0x1D482
)

// Stylize maps ASCII letters and digits to their Unicode mathematical
// alphanumeric equivalents for the given style. Characters without a
// styled form pass through unchanged; italic digits have no codepoints
// of their own, so bold+italic digits fall back to bold digits and
// plain italic leaves digits as-is.
func Stylize(text string, bold, italic bool) string {
	if !bold && !italic {
		return text
	}
	out := make([]rune, 0, len(text))
	for _, r := range text {
		out = append(out, styleRune(r, bold, italic))
	}
	return string(out)
}

func styleRune(r rune, bold, italic bool) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		switch {
		case bold && italic:
			return boldItalicUpper + (r - 'A')
		case bold:
			return boldUpper + (r - 'A')
		default:
			return italicUpper + (r - 'A')
		}
	case r >= 'a' && r <= 'z':
		switch {
		case bold && italic:
			return boldItalicLower + (r - 'a')
		case bold:
			return boldLower + (r - 'a')
		case r == 'h':
			// U+1D455 is reserved; Planck constant stands in.
			return 0x210E
		default:
			return italicLower + (r - 'a')
		}
	case r >= '0' && r <= '9':
		if bold {
			return boldDigit + (r - '0')
		}
		return r
	default:
		return r
	}
}

// stylizeChunk renders one chunk with its own styling applied.
func stylizeChunk(c Chunk) string {
	return Stylize(c.Text, c.Bold, c.Italic)
}
