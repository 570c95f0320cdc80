package ops

import (
	"bytes"
	"database/sql"

	"github.com/yuin/goldmark"

	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/richtext"
)

// ComposeFormat selects the output format of the Compose operation.
type ComposeFormat string

const (
	FormatPlain    ComposeFormat = "plain"
	FormatTweet    ComposeFormat = "tweet"
	FormatMarkdown ComposeFormat = "markdown"
	FormatRich     ComposeFormat = "rich"
	FormatHTML     ComposeFormat = "html"
)

// ComposeInput contains parameters for the Compose operation.
type ComposeInput struct {
	DraftID string
	Format  ComposeFormat // default: plain
	Styled  bool          // tweet format: map bold/italic to Unicode styled characters
}

// ComposeOutput contains the result of the Compose operation.
type ComposeOutput struct {
	Format ComposeFormat `json:"format"`
	// Posts holds per-post renderings for post-shaped formats.
	Posts []string `json:"posts,omitempty"`
	// Article holds the single-document rendering for article formats.
	Article string `json:"article,omitempty"`
}

// Compose renders a draft into one of the supported output formats.
// Plain and tweet render post by post; markdown, rich, and html merge
// the thread into one article.
func Compose(database *sql.DB, input ComposeInput) (*ComposeOutput, error) {
	if input.DraftID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Format == "" {
		input.Format = FormatPlain
	}

	d, err := db.GetDraft(database, input.DraftID)
	if err != nil {
		return nil, err
	}

	docs := make([]richtext.Document, len(d.Posts))
	for i, p := range d.Posts {
		docs[i] = richtext.Parse(p.Text)
	}

	out := &ComposeOutput{Format: input.Format}
	switch input.Format {
	case FormatPlain:
		for _, doc := range docs {
			out.Posts = append(out.Posts, richtext.RenderPlain(doc))
		}
	case FormatTweet:
		for _, doc := range docs {
			out.Posts = append(out.Posts, richtext.RenderTweet(doc, input.Styled))
		}
	case FormatMarkdown:
		out.Article = richtext.ArticleMarkdown(docs)
	case FormatRich:
		out.Article = richtext.ArticleMarkup(docs)
	case FormatHTML:
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(richtext.ArticleMarkdown(docs)), &buf); err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Article = buf.String()
	default:
		return nil, errors.NewInvalidRequest("format must be one of: plain, tweet, markdown, rich, html")
	}

	return out, nil
}
