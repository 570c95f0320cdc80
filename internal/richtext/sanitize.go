package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags maps every permitted tag to its canonical spelling.
// Legacy aliases normalize: b→strong, i→em, div→p. Anything absent is
// stripped and replaced by its own text content.
var allowedTags = map[string]string{
	"p":          "p",
	"br":         "br",
	"strong":     "strong",
	"b":          "strong",
	"em":         "em",
	"i":          "em",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"blockquote": "blockquote",
	"ul":         "ul",
	"li":         "li",
	"div":        "p",
}

// Sanitize restricts markup to the allowed structural tag set, strips
// every attribute, normalizes alias spellings, and replaces disallowed
// tags with their text content. An empty or whitespace-only result
// normalizes to the canonical empty paragraph. Re-sanitizing already
// sanitized markup is byte-identical.
func Sanitize(markup string) string {
	nodes, err := parseFragment(markup)
	if err != nil {
		return EmptyParagraph
	}

	var sb strings.Builder
	for _, n := range nodes {
		writeSanitized(&sb, n)
	}
	out := sb.String()

	if strings.TrimSpace(stripTags(out)) == "" {
		return EmptyParagraph
	}
	return out
}

func parseFragment(markup string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

func writeSanitized(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		tag, ok := allowedTags[n.Data]
		if !ok {
			// Disallowed tag: keep only its text content.
			sb.WriteString(html.EscapeString(textContent(n)))
			return
		}
		if tag == "br" {
			sb.WriteString("<br>")
			return
		}
		sb.WriteString("<" + tag + ">")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeSanitized(sb, c)
		}
		sb.WriteString("</" + tag + ">")
	default:
		// Comments, doctypes and the like are dropped.
	}
}

// textContent collects the concatenated text of a subtree.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// stripTags removes every tag, leaving text with entities decoded.
func stripTags(markup string) string {
	nodes, err := parseFragment(markup)
	if err != nil {
		return markup
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(textContent(n))
	}
	return sb.String()
}
