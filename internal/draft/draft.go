// Package draft defines the thread draft model shared by the editor
// operations, the lint engine, and the publish queue.
package draft

import (
	"strings"
	"time"

	"github.com/quillpad/quill/internal/richtext"
)

// MaxPollOptions is the platform cap on poll choices.
const MaxPollOptions = 4

// MediaType classifies an attachment.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// Media is one attachment on a post. Ref is an opaque locator (path
// or URL); Alt carries accessibility text.
type Media struct {
	Type MediaType `json:"type"`
	Ref  string    `json:"ref"`
	Alt  string    `json:"alt,omitempty"`
}

// Poll is an optional poll attached to a post.
type Poll struct {
	Options         []string `json:"options"`
	DurationMinutes int      `json:"durationMinutes"`
}

// Post is one entry in a thread. Text holds sanitized rich markup.
type Post struct {
	Text  string  `json:"text"`
	Media []Media `json:"media,omitempty"`
	Poll  *Poll   `json:"poll,omitempty"`
}

// Draft is an editable thread.
type Draft struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Posts     []Post    `json:"posts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize returns the post with its text sanitized and its poll
// reduced to valid shape: blank options dropped, at most four kept,
// and a poll with fewer than two surviving options removed entirely.
func (p Post) Normalize() Post {
	p.Text = richtext.Sanitize(p.Text)

	if p.Poll != nil {
		opts := make([]string, 0, len(p.Poll.Options))
		for _, o := range p.Poll.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				continue
			}
			opts = append(opts, o)
			if len(opts) == MaxPollOptions {
				break
			}
		}
		if len(opts) < 2 {
			p.Poll = nil
		} else {
			poll := *p.Poll
			poll.Options = opts
			p.Poll = &poll
		}
	}

	return p
}

// Normalize sanitizes every post of the draft.
func (d Draft) Normalize() Draft {
	posts := make([]Post, len(d.Posts))
	for i, p := range d.Posts {
		posts[i] = p.Normalize()
	}
	if len(posts) == 0 {
		posts = []Post{{Text: richtext.EmptyParagraph}}
	}
	d.Posts = posts
	return d
}

// PlainText renders the post for linting and previews.
func (p Post) PlainText() string {
	return richtext.RenderPlain(richtext.Parse(p.Text))
}

// TweetText renders the post the way it will be published: block
// prefix glyphs included, styled characters off. Counting and the
// publish payload both use this rendering.
func (p Post) TweetText() string {
	return richtext.RenderTweet(richtext.Parse(p.Text), false)
}
