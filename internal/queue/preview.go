package queue

import (
	"strings"

	"github.com/quillpad/quill/internal/draft"
)

// previewRunes caps the preview length.
const previewRunes = 80

// EmptyPreview stands in when a thread has no visible text.
const EmptyPreview = "(Empty)"

// Preview returns a one-line summary of the thread: the plain text of
// the first post with any visible content, whitespace collapsed and
// truncated to a fixed rune budget.
func Preview(posts []draft.Post) string {
	for _, p := range posts {
		text := strings.Join(strings.Fields(p.PlainText()), " ")
		if text == "" {
			continue
		}
		return truncateRunes(text, previewRunes)
	}
	return EmptyPreview
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
