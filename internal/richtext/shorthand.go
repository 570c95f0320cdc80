package richtext

import (
	"regexp"
	"strings"
)

var (
	reBoldItalic = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
)

// blockPrefixes maps line prefixes to block types, longest first so
// "###" is never consumed by "#".
var blockPrefixes = []struct {
	prefix string
	typ    BlockType
}{
	{"### ", BlockH3},
	{"## ", BlockH2},
	{"# ", BlockH1},
	{"> ", BlockQuote},
	{"- ", BlockList},
	{"* ", BlockList},
}

// ParseShorthand parses the lightweight markdown-like grammar: "# ",
// "## ", "### " headings, "> " quote, "- "/"* " list items, blank line
// as an explicit empty paragraph break, and **bold**/*italic* inline
// markers (bold detected before italic so "**" is never mis-split into
// two italics).
func ParseShorthand(input string) Document {
	if strings.TrimSpace(input) == "" {
		return emptyDocument()
	}

	var blocks []Block
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, Block{Type: BlockEmpty, Chunks: []Chunk{{}}})
			continue
		}

		typ := BlockParagraph
		rest := line
		for _, bp := range blockPrefixes {
			if strings.HasPrefix(line, bp.prefix) {
				typ = bp.typ
				rest = line[len(bp.prefix):]
				break
			}
		}
		blocks = append(blocks, Block{Type: typ, Chunks: parseInline(rest)})
	}

	return Document{Blocks: blocks}
}

// parseInline splits a line into styled chunks. Resolution order is
// bold-italic, then bold, then italic.
func parseInline(s string) []Chunk {
	chunks := inlineChunks(s, false, false)
	if len(chunks) == 0 {
		chunks = []Chunk{{}}
	}
	return chunks
}

// inlineChunks recursively resolves style markers. Text before and
// after a marker keeps the current flags; the marker's content adds
// its style on top.
func inlineChunks(s string, bold, italic bool) []Chunk {
	if s == "" {
		return nil
	}

	if !bold && !italic {
		if loc := reBoldItalic.FindStringSubmatchIndex(s); loc != nil {
			return joinChunks(
				inlineChunks(s[:loc[0]], bold, italic),
				[]Chunk{{Text: s[loc[2]:loc[3]], Bold: true, Italic: true}},
				inlineChunks(s[loc[1]:], bold, italic),
			)
		}
	}
	if !bold {
		if loc := reBold.FindStringSubmatchIndex(s); loc != nil {
			return joinChunks(
				inlineChunks(s[:loc[0]], bold, italic),
				inlineChunks(s[loc[2]:loc[3]], true, italic),
				inlineChunks(s[loc[1]:], bold, italic),
			)
		}
	}
	if !italic {
		if loc := reItalic.FindStringSubmatchIndex(s); loc != nil {
			return joinChunks(
				inlineChunks(s[:loc[0]], bold, italic),
				inlineChunks(s[loc[2]:loc[3]], bold, true),
				inlineChunks(s[loc[1]:], bold, italic),
			)
		}
	}
	return []Chunk{{Text: s, Bold: bold, Italic: italic}}
}

func joinChunks(groups ...[]Chunk) []Chunk {
	var out []Chunk
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
