// Package queue implements the publish queue engine: due selection,
// attempt bookkeeping with escalating retry delays, terminal failure,
// and the activity log. The engine is pure value-in/value-out; the ops
// layer owns persistence and clock wiring.
package queue

import (
	"sort"
	"time"

	"github.com/quillpad/quill/internal/draft"
)

// Status of a queue item. Success removes the item from the queue, so
// only pending and failed exist here.
type Status string

const (
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// DefaultMaxAttempts is the automatic attempt budget per item.
const DefaultMaxAttempts = 3

// retryDelays escalates per failed attempt; attempts past the table
// reuse the last delay.
var retryDelays = []time.Duration{2 * time.Minute, 10 * time.Minute, 30 * time.Minute}

// RetryDelay returns the backoff after the given failed attempt count
// (1-based).
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(retryDelays) {
		attempt = len(retryDelays)
	}
	return retryDelays[attempt-1]
}

// Item is a scheduled thread waiting in the queue.
type Item struct {
	ID           string       `json:"id"`
	DraftID      string       `json:"draftId,omitempty"`
	Title        string       `json:"title"`
	Posts        []draft.Post `json:"posts"`
	Status       Status       `json:"status"`
	PublishAt    time.Time    `json:"publishAt"`
	AttemptCount int          `json:"attemptCount"`
	MaxAttempts  int          `json:"maxAttempts"`
	LastAttempt  *time.Time   `json:"lastAttemptAt,omitempty"`
	NextRetryAt  *time.Time   `json:"nextRetryAt,omitempty"`
	LastError    string       `json:"lastError,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Metrics is the engagement snapshot attached to a published item.
type Metrics struct {
	Impressions    int     `json:"impressions"`
	Likes          int     `json:"likes"`
	Reposts        int     `json:"reposts"`
	Replies        int     `json:"replies"`
	Bookmarks      int     `json:"bookmarks"`
	ProfileClicks  int     `json:"profileClicks"`
	EngagementRate float64 `json:"engagementRate"`
}

// PublishedItem records a successful publish.
type PublishedItem struct {
	ID          string       `json:"id"`
	DraftID     string       `json:"draftId,omitempty"`
	Title       string       `json:"title"`
	Posts       []draft.Post `json:"posts"`
	PublishedAt time.Time    `json:"publishedAt"`
	Metrics     Metrics      `json:"metrics"`
}

// NewItem builds a pending item for the given thread.
func NewItem(id string, d draft.Draft, publishAt, now time.Time) Item {
	return Item{
		ID:          id,
		DraftID:     d.ID,
		Title:       d.Title,
		Posts:       d.Posts,
		Status:      StatusPending,
		PublishAt:   publishAt,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EffectiveDueTime is when the item next wants an attempt: the retry
// time for a failed item awaiting retry, the scheduled time otherwise.
func (it Item) EffectiveDueTime() time.Time {
	if it.Status == StatusFailed && it.NextRetryAt != nil {
		return *it.NextRetryAt
	}
	return it.PublishAt
}

// Terminal reports whether the item has exhausted its attempts and
// will not be retried automatically.
func (it Item) Terminal() bool {
	return it.Status == StatusFailed && it.AttemptCount >= it.MaxAttempts
}

// IsDue reports whether the item should be attempted at now. Terminal
// failures are never due; they wait for a manual retry.
func (it Item) IsDue(now time.Time) bool {
	switch it.Status {
	case StatusPending:
		return !it.PublishAt.After(now)
	case StatusFailed:
		return it.NextRetryAt != nil &&
			!it.NextRetryAt.After(now) &&
			it.AttemptCount < it.MaxAttempts
	default:
		return false
	}
}

// Due returns the due items ordered by effective due time.
func Due(items []Item, now time.Time) []Item {
	var due []Item
	for _, it := range items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}
	SortQueue(due)
	return due
}

// SortQueue orders queue items soonest-first by effective due time,
// with ID as a stable tiebreak.
func SortQueue(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].EffectiveDueTime(), items[j].EffectiveDueTime()
		if a.Equal(b) {
			return items[i].ID < items[j].ID
		}
		return a.Before(b)
	})
}

// SortPublished orders published items newest-first.
func SortPublished(items []PublishedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

// MarkFailure records a failed attempt at now. While attempts remain
// the item schedules its next retry; the final failure goes terminal
// with no retry time.
func MarkFailure(it Item, now time.Time, cause string) Item {
	it.AttemptCount++
	it.Status = StatusFailed
	it.LastAttempt = &now
	it.UpdatedAt = now
	it.LastError = cause
	if it.AttemptCount < it.MaxAttempts {
		next := now.Add(RetryDelay(it.AttemptCount))
		it.NextRetryAt = &next
	} else {
		it.NextRetryAt = nil
	}
	return it
}

// ResetForRetry reactivates a terminal item by hand: attempts reset,
// status back to pending, due immediately.
func ResetForRetry(it Item, now time.Time) Item {
	it.Status = StatusPending
	it.AttemptCount = 0
	it.PublishAt = now
	it.NextRetryAt = nil
	it.LastError = ""
	it.UpdatedAt = now
	return it
}

// Remove drops the item with the given id and reports whether it was
// present.
func Remove(items []Item, id string) ([]Item, Item, bool) {
	for i, it := range items {
		if it.ID == id {
			out := make([]Item, 0, len(items)-1)
			out = append(out, items[:i]...)
			out = append(out, items[i+1:]...)
			return out, it, true
		}
	}
	return items, Item{}, false
}
