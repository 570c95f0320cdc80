package richtext

import (
	"regexp"
	"strings"
)

var reBlankRuns = regexp.MustCompile(`\n{3,}`)

// RenderPlain flattens the document to plain text: one line per block,
// no styling, runs of blank lines collapsed to a single blank line.
func RenderPlain(d Document) string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type == BlockEmpty {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, b.text())
	}
	out := strings.Join(lines, "\n")
	out = reBlankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// tweetPrefixes marks block roles with glyphs since tweets carry no
// real markup.
var tweetPrefixes = map[BlockType]string{
	BlockH1:    "◆ ",
	BlockH2:    "▹ ",
	BlockH3:    "▸ ",
	BlockQuote: "❝ ",
	BlockList:  "• ",
}

// RenderTweet renders the document for a plain-text post surface.
// Headings, quotes and list items get prefix glyphs; when styled is
// true, bold and italic runs are mapped to Unicode mathematical
// alphanumerics and headings are bolded whole.
func RenderTweet(d Document, styled bool) string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type == BlockEmpty {
			lines = append(lines, "")
			continue
		}
		var sb strings.Builder
		sb.WriteString(tweetPrefixes[b.Type])
		heading := b.Type == BlockH1 || b.Type == BlockH2 || b.Type == BlockH3
		for _, c := range b.Chunks {
			if !styled {
				sb.WriteString(c.Text)
				continue
			}
			if heading {
				sb.WriteString(Stylize(c.Text, true, c.Italic))
				continue
			}
			sb.WriteString(stylizeChunk(c))
		}
		lines = append(lines, sb.String())
	}
	out := strings.Join(lines, "\n")
	out = reBlankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
