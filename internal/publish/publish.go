// Package publish provides the attempters behind the queue engine: a
// deterministic simulator for local use and a webhook-backed thread
// publisher for real delivery.
package publish

import (
	"context"
	"fmt"

	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/queue"
)

// Publisher delivers a single post and returns its remote id. Replies
// reference the previous post's id to keep a thread connected.
type Publisher interface {
	Publish(ctx context.Context, post draft.Post, inReplyTo string) (string, error)
}

// ThreadAttempter publishes a queue item post by post, chaining each
// post as a reply to the previous one. The first failing post aborts
// the attempt; the queue engine owns the retry from there.
type ThreadAttempter struct {
	Publisher Publisher
}

// Attempt implements queue.Attempter.
func (a ThreadAttempter) Attempt(ctx context.Context, it queue.Item) (queue.Metrics, error) {
	inReplyTo := ""
	for i, post := range it.Posts {
		id, err := a.Publisher.Publish(ctx, post, inReplyTo)
		if err != nil {
			return queue.Metrics{}, fmt.Errorf("post %d/%d: %w", i+1, len(it.Posts), err)
		}
		inReplyTo = id
	}
	return queue.Metrics{}, nil
}
