package ops

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/publish"
	"github.com/quillpad/quill/internal/queue"
)

// runMu serializes due-processing passes so concurrent callers (CLI
// command plus MCP tool) never double-publish an item.
var runMu sync.Mutex

// RunDueInput contains parameters for the RunDue operation.
type RunDueInput struct {
	// Attempter overrides the configured attempter. Tests inject a
	// deterministic one here.
	Attempter queue.Attempter
}

// RunDueOutput contains the result of the RunDue operation.
type RunDueOutput struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Remaining int           `json:"remaining"`
	Activity  []queue.Entry `json:"activity"`
}

// RunDue attempts every due queue item once and persists the resulting
// queue, published, and activity state.
func RunDue(ctx context.Context, database *sql.DB, cfg *config.Config, input RunDueInput) (*RunDueOutput, error) {
	runMu.Lock()
	defer runMu.Unlock()

	items, err := db.ListQueue(database)
	if err != nil {
		return nil, err
	}
	activity, err := db.ListActivity(database)
	if err != nil {
		return nil, err
	}

	att := input.Attempter
	if att == nil {
		att = configuredAttempter(cfg)
	}

	before := make(map[string]queue.Item, len(items))
	for _, it := range items {
		before[it.ID] = it
	}

	now := time.Now().UTC()
	res := queue.RunDue(ctx, now, items, nil, activity, att, mustULID)

	for _, it := range res.Queue {
		prev, ok := before[it.ID]
		if !ok || prev.AttemptCount != it.AttemptCount || prev.Status != it.Status {
			if err := db.UpsertQueueItem(database, it); err != nil {
				return nil, err
			}
		}
		delete(before, it.ID)
	}
	// Whatever left the queue was published.
	for id := range before {
		if err := db.DeleteQueueItem(database, id); err != nil {
			return nil, err
		}
	}
	for _, p := range res.Published {
		if err := db.InsertPublished(database, p); err != nil {
			return nil, err
		}
	}
	// Each attempt contributed exactly one entry at the front of the
	// trimmed log; insert oldest-first so the stored order matches.
	newEntries := res.Attempted
	if newEntries > len(res.Activity) {
		newEntries = len(res.Activity)
	}
	for i := newEntries - 1; i >= 0; i-- {
		if err := db.InsertActivity(database, res.Activity[i]); err != nil {
			return nil, err
		}
	}

	return &RunDueOutput{
		Attempted: res.Attempted,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Remaining: len(res.Queue),
		Activity:  res.Activity,
	}, nil
}

// configuredAttempter picks the webhook publisher when one is set, the
// deterministic simulator otherwise.
func configuredAttempter(cfg *config.Config) queue.Attempter {
	if cfg != nil && cfg.PublishWebhook != "" {
		return publish.ThreadAttempter{Publisher: publish.WebhookPublisher{
			Endpoint: cfg.PublishWebhook,
			Token:    cfg.PublishToken,
			Client:   &http.Client{Timeout: 30 * time.Second},
		}}
	}
	return publish.Simulated{}
}

// mustULID is the id source for published records. ULID generation
// only fails when the entropy source does, which is fatal anyway.
func mustULID() string {
	id, err := generateULID()
	if err != nil {
		panic(errors.NewInternal(err))
	}
	return id
}
