package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/quillpad/quill/internal/draft"
)

// WebhookPublisher delivers posts to an HTTP endpoint. Transient
// transport and 5xx failures are retried with backoff inside a single
// publish call; 4xx responses are treated as permanent.
type WebhookPublisher struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

type webhookRequest struct {
	Text      string        `json:"text"`
	Markup    string        `json:"markup"`
	InReplyTo string        `json:"inReplyTo,omitempty"`
	Media     []draft.Media `json:"media,omitempty"`
	Poll      *draft.Poll   `json:"poll,omitempty"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// Publish implements Publisher.
func (w WebhookPublisher) Publish(ctx context.Context, post draft.Post, inReplyTo string) (string, error) {
	body, err := json.Marshal(webhookRequest{
		Text:      post.TweetText(),
		Markup:    post.Text,
		InReplyTo: inReplyTo,
		Media:     post.Media,
		Poll:      post.Poll,
	})
	if err != nil {
		return "", fmt.Errorf("encoding webhook payload: %w", err)
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var id string
	err = retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if w.Token != "" {
			req.Header.Set("Authorization", "Bearer "+w.Token)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("webhook returned %s", resp.Status)
			if resp.StatusCode < 500 {
				return retry.Unrecoverable(err)
			}
			return err
		}

		var decoded webhookResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decoding webhook response: %w", err))
		}
		id = decoded.ID
		return nil
	},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}
