package richtext

import "strings"

// RenderMarkdown converts the document to Markdown. Bold/italic runs
// become **/* spans; list items become dash bullets.
func RenderMarkdown(d Document) string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type == BlockEmpty {
			lines = append(lines, "")
			continue
		}
		var sb strings.Builder
		switch b.Type {
		case BlockH1:
			sb.WriteString("# ")
		case BlockH2:
			sb.WriteString("## ")
		case BlockH3:
			sb.WriteString("### ")
		case BlockQuote:
			sb.WriteString("> ")
		case BlockList:
			sb.WriteString("- ")
		}
		for _, c := range b.Chunks {
			sb.WriteString(markdownSpan(c))
		}
		lines = append(lines, sb.String())
	}
	out := strings.Join(lines, "\n")
	out = reBlankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func markdownSpan(c Chunk) string {
	text := c.Text
	if strings.TrimSpace(text) == "" {
		return text
	}
	switch {
	case c.Bold && c.Italic:
		return "***" + text + "***"
	case c.Bold:
		return "**" + text + "**"
	case c.Italic:
		return "*" + text + "*"
	default:
		return text
	}
}

// ArticleMarkdown joins the posts of a thread into a single Markdown
// article. Each post is a section; sections with no visible text are
// dropped and the rest are separated by blank lines.
func ArticleMarkdown(posts []Document) string {
	sections := make([]string, 0, len(posts))
	for _, d := range posts {
		md := RenderMarkdown(d)
		if md == "" {
			continue
		}
		sections = append(sections, md)
	}
	return strings.Join(sections, "\n\n")
}

// ArticleMarkup joins the posts of a thread into one rich-markup
// article. Posts with no visible text are dropped; the rest are
// concatenated in order.
func ArticleMarkup(posts []Document) string {
	var sb strings.Builder
	for _, d := range posts {
		if RenderPlain(d) == "" {
			continue
		}
		sb.WriteString(d.Markup())
	}
	return sb.String()
}
