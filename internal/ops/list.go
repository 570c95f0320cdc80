package ops

import (
	"database/sql"
	"time"

	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/queue"
)

// QueueEntry is one row of a queue listing.
type QueueEntry struct {
	Item    queue.Item `json:"item"`
	Preview string     `json:"preview"`
	DueAt   time.Time  `json:"due_at"`
	Due     bool       `json:"due"`
}

// ListQueueOutput contains the result of the ListQueue operation.
type ListQueueOutput struct {
	Items []QueueEntry `json:"items"`
	Total int          `json:"total"`
}

// ListQueue returns the queue ordered soonest-first.
func ListQueue(database *sql.DB) (*ListQueueOutput, error) {
	items, err := db.ListQueue(database)
	if err != nil {
		return nil, err
	}
	queue.SortQueue(items)

	now := time.Now().UTC()
	out := &ListQueueOutput{Items: []QueueEntry{}, Total: len(items)}
	for _, it := range items {
		out.Items = append(out.Items, QueueEntry{
			Item:    it,
			Preview: queue.Preview(it.Posts),
			DueAt:   it.EffectiveDueTime(),
			Due:     it.IsDue(now),
		})
	}
	return out, nil
}

// PublishedEntry is one row of a published listing.
type PublishedEntry struct {
	Item    queue.PublishedItem `json:"item"`
	Preview string              `json:"preview"`
}

// ListPublishedOutput contains the result of the ListPublished operation.
type ListPublishedOutput struct {
	Items []PublishedEntry `json:"items"`
	Total int              `json:"total"`
}

// ListPublished returns published records, newest first.
func ListPublished(database *sql.DB) (*ListPublishedOutput, error) {
	items, err := db.ListPublished(database)
	if err != nil {
		return nil, err
	}
	out := &ListPublishedOutput{Items: []PublishedEntry{}, Total: len(items)}
	for _, p := range items {
		out.Items = append(out.Items, PublishedEntry{Item: p, Preview: queue.Preview(p.Posts)})
	}
	return out, nil
}

// ListActivityOutput contains the result of the ListActivity operation.
type ListActivityOutput struct {
	Entries []queue.Entry `json:"entries"`
}

// ListActivity returns the activity log, newest first.
func ListActivity(database *sql.DB) (*ListActivityOutput, error) {
	entries, err := db.ListActivity(database)
	if err != nil {
		return nil, err
	}
	return &ListActivityOutput{Entries: entries}, nil
}
