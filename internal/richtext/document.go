// Package richtext implements the rich document model and its format
// transformations: a lightweight shorthand parser, a rich-markup
// sanitizer and tree parser, and renderers for lint-plain text,
// platform tweet text, and article markdown/markup.
package richtext

import (
	"regexp"
	"strings"
)

// BlockType classifies a document block.
type BlockType string

const (
	BlockH1        BlockType = "h1"
	BlockH2        BlockType = "h2"
	BlockH3        BlockType = "h3"
	BlockQuote     BlockType = "quote"
	BlockList      BlockType = "list"
	BlockParagraph BlockType = "p"
	BlockEmpty     BlockType = "empty"
)

// Chunk is a run of inline text with inherited styling flags.
type Chunk struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Block is one structural unit of a document. A list item is its own
// block; adjacent list blocks are merged into one container only at
// markup-serialization time.
type Block struct {
	Type   BlockType `json:"type"`
	Chunks []Chunk   `json:"chunks"`
}

// Document is an ordered sequence of blocks. It is rebuilt on every
// formatting request and never persisted.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// EmptyParagraph is the canonical markup for a document with no content.
const EmptyParagraph = "<p></p>"

// reTagLike detects inputs that already look like rich markup.
var reTagLike = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// Parse converts shorthand or rich markup into a Document. Inputs
// containing a tag-like pattern take the markup path; everything else
// is treated as shorthand. An empty input parses to exactly one empty
// block with one empty chunk, never zero blocks.
func Parse(input string) Document {
	if reTagLike.MatchString(input) {
		return defaultParser.Parse(input)
	}
	return ParseShorthand(input)
}

// text returns the block's concatenated chunk text.
func (b Block) text() string {
	var sb strings.Builder
	for _, c := range b.Chunks {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// emptyDocument is the canonical parse of no content.
func emptyDocument() Document {
	return Document{Blocks: []Block{{Type: BlockEmpty, Chunks: []Chunk{{}}}}}
}
