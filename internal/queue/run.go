package queue

import (
	"context"
	"fmt"
	"time"
)

// Attempter performs one publish attempt for a queue item.
type Attempter interface {
	Attempt(ctx context.Context, it Item) (Metrics, error)
}

// AttempterFunc adapts a function to the Attempter interface.
type AttempterFunc func(ctx context.Context, it Item) (Metrics, error)

// Attempt implements Attempter.
func (f AttempterFunc) Attempt(ctx context.Context, it Item) (Metrics, error) {
	return f(ctx, it)
}

// RunResult is the outcome of one due-processing pass.
type RunResult struct {
	Queue     []Item          `json:"queue"`
	Published []PublishedItem `json:"published"`
	Activity  []Entry         `json:"activity"`
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// RunDue attempts every due item once, in effective-due-time order.
// Successes move to the published list with the attempter's metrics;
// failures stay queued with updated retry state. newID mints IDs for
// published records and activity entries. A context cancellation stops
// the pass after the current attempt; already-processed items keep
// their new state.
func RunDue(ctx context.Context, now time.Time, items []Item, published []PublishedItem, activity []Entry, att Attempter, newID func() string) RunResult {
	res := RunResult{Queue: items, Published: published, Activity: activity}

	for _, due := range Due(items, now) {
		if ctx.Err() != nil {
			break
		}
		res.Attempted++

		metrics, err := att.Attempt(ctx, due)
		if err != nil {
			res.Failed++
			updated := MarkFailure(due, now, err.Error())
			res.Queue = replace(res.Queue, updated)
			msg := fmt.Sprintf("Publish failed (attempt %d/%d): %s", updated.AttemptCount, updated.MaxAttempts, err)
			level := LevelWarn
			if updated.Terminal() {
				msg = fmt.Sprintf("Publish failed permanently after %d attempts: %s", updated.AttemptCount, err)
				level = LevelError
			}
			res.Activity = AppendActivity(res.Activity, Entry{
				ID: newID(), At: now, Kind: EntryFailed, Level: level,
				ItemID: due.ID, Message: msg,
			})
			continue
		}

		res.Succeeded++
		res.Queue, _, _ = Remove(res.Queue, due.ID)
		res.Published = append(res.Published, PublishedItem{
			ID:          newID(),
			DraftID:     due.DraftID,
			Title:       due.Title,
			Posts:       due.Posts,
			PublishedAt: now,
			Metrics:     metrics,
		})
		res.Activity = AppendActivity(res.Activity, Entry{
			ID: newID(), At: now, Kind: EntryPublished, Level: LevelInfo,
			ItemID: due.ID, Message: "Published: " + Preview(due.Posts),
		})
	}

	SortQueue(res.Queue)
	SortPublished(res.Published)
	return res
}

func replace(items []Item, updated Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i, it := range out {
		if it.ID == updated.ID {
			out[i] = updated
			break
		}
	}
	return out
}
