package richtext

import (
	"strings"

	"golang.org/x/net/html"
)

// Markup serializes the document back to sanitized rich markup.
// Adjacent list blocks are merged into a single <ul> container, so a
// parse/serialize round trip is stable even though the document model
// carries one block per list item.
func (d Document) Markup() string {
	var sb strings.Builder
	i := 0
	for i < len(d.Blocks) {
		b := d.Blocks[i]
		if b.Type == BlockList {
			sb.WriteString("<ul>")
			for i < len(d.Blocks) && d.Blocks[i].Type == BlockList {
				sb.WriteString("<li>")
				writeChunks(&sb, d.Blocks[i].Chunks)
				sb.WriteString("</li>")
				i++
			}
			sb.WriteString("</ul>")
			continue
		}
		tag := blockTag(b.Type)
		sb.WriteString("<" + tag + ">")
		if b.Type != BlockEmpty {
			writeChunks(&sb, b.Chunks)
		}
		sb.WriteString("</" + tag + ">")
		i++
	}
	if sb.Len() == 0 {
		return EmptyParagraph
	}
	return sb.String()
}

func blockTag(t BlockType) string {
	switch t {
	case BlockH1:
		return "h1"
	case BlockH2:
		return "h2"
	case BlockH3:
		return "h3"
	case BlockQuote:
		return "blockquote"
	default:
		return "p"
	}
}

func writeChunks(sb *strings.Builder, chunks []Chunk) {
	for _, c := range chunks {
		if c.Bold {
			sb.WriteString("<strong>")
		}
		if c.Italic {
			sb.WriteString("<em>")
		}
		for j, line := range strings.Split(c.Text, "\n") {
			if j > 0 {
				sb.WriteString("<br>")
			}
			sb.WriteString(html.EscapeString(line))
		}
		if c.Italic {
			sb.WriteString("</em>")
		}
		if c.Bold {
			sb.WriteString("</strong>")
		}
	}
}
