package richtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MarkupParser converts sanitized rich markup into a Document. Two
// interchangeable strategies exist: a tree-based parser and a
// regex/line-based fallback. The strategy is picked at construction
// time, never by environment probing.
type MarkupParser interface {
	Parse(markup string) Document
}

// defaultParser is the strategy used by package-level Parse.
var defaultParser MarkupParser = TreeParser{}

// TreeParser walks the sanitized markup tree to extract blocks and
// inline chunks with additive bold/italic inheritance.
type TreeParser struct{}

// Parse implements MarkupParser.
func (TreeParser) Parse(markup string) Document {
	clean := Sanitize(markup)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return FallbackParser{}.Parse(markup)
	}

	var blocks []Block
	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			blocks = append(blocks, nodeBlocks(n)...)
		}
	})

	if len(blocks) == 0 {
		return emptyDocument()
	}
	return Document{Blocks: blocks}
}

// nodeBlocks converts one top-level element into document blocks. List
// containers contribute one list block per child item.
func nodeBlocks(n *html.Node) []Block {
	switch n.Data {
	case "h1":
		return []Block{inlineBlock(BlockH1, n)}
	case "h2":
		return []Block{inlineBlock(BlockH2, n)}
	case "h3":
		return []Block{inlineBlock(BlockH3, n)}
	case "blockquote":
		return []Block{inlineBlock(BlockQuote, n)}
	case "ul":
		var blocks []Block
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				blocks = append(blocks, inlineBlock(BlockList, c))
			}
		}
		return blocks
	default:
		b := inlineBlock(BlockParagraph, n)
		if b.text() == "" {
			b.Type = BlockEmpty
		}
		return []Block{b}
	}
}

func inlineBlock(typ BlockType, n *html.Node) Block {
	chunks := walkInline(n, false, false)
	if len(chunks) == 0 {
		chunks = []Chunk{{}}
	}
	return Block{Type: typ, Chunks: chunks}
}

// walkInline flattens an element's inline content. Bold/italic state is
// inherited additively down the tree: a <strong> inside an <em> yields
// bold+italic text.
func walkInline(n *html.Node, bold, italic bool) []Chunk {
	var chunks []Chunk
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			if c.Data != "" {
				chunks = append(chunks, Chunk{Text: c.Data, Bold: bold, Italic: italic})
			}
		case c.Type != html.ElementNode:
			// skip comments
		case c.Data == "strong":
			chunks = append(chunks, walkInline(c, true, italic)...)
		case c.Data == "em":
			chunks = append(chunks, walkInline(c, bold, true)...)
		case c.Data == "br":
			chunks = append(chunks, Chunk{Text: "\n", Bold: bold, Italic: italic})
		default:
			chunks = append(chunks, walkInline(c, bold, italic)...)
		}
	}
	return chunks
}

// FallbackParser extracts blocks with regexes only. It cannot recover
// inline styling and exists for callers that need a parser with no
// tree machinery behind it.
type FallbackParser struct{}

var (
	reBlockSplit = regexp.MustCompile(`(?i)</(?:p|h1|h2|h3|blockquote|li|div)>|<br\s*/?>`)
	reAnyTag     = regexp.MustCompile(`<[^>]+>`)
	reOpenTag    = regexp.MustCompile(`(?i)^<(p|h1|h2|h3|blockquote|li|div)[^>]*>`)
	reListWrap   = regexp.MustCompile(`(?i)</?ul[^>]*>`)
)

// Parse implements MarkupParser.
func (FallbackParser) Parse(markup string) Document {
	var blocks []Block
	for _, seg := range reBlockSplit.Split(markup, -1) {
		seg = strings.TrimSpace(reListWrap.ReplaceAllString(seg, ""))
		typ := BlockParagraph
		if m := reOpenTag.FindStringSubmatch(seg); m != nil {
			switch strings.ToLower(m[1]) {
			case "h1":
				typ = BlockH1
			case "h2":
				typ = BlockH2
			case "h3":
				typ = BlockH3
			case "blockquote":
				typ = BlockQuote
			case "li":
				typ = BlockList
			}
		}
		text := strings.TrimSpace(reAnyTag.ReplaceAllString(seg, ""))
		if text == "" {
			continue
		}
		blocks = append(blocks, Block{Type: typ, Chunks: []Chunk{{Text: html.UnescapeString(text)}}})
	}

	if len(blocks) == 0 {
		return emptyDocument()
	}
	return Document{Blocks: blocks}
}
