package ops

import (
	"database/sql"
	"time"

	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/queue"
)

// RetryOutput contains the result of the Retry operation.
type RetryOutput struct {
	Item queue.Item `json:"item"`
}

// Retry reactivates a failed queue item: attempts reset to zero and
// the item becomes due immediately.
func Retry(database *sql.DB, id string) (*RetryOutput, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	it, err := db.GetQueueItem(database, id)
	if err != nil {
		return nil, err
	}
	if it.Status != queue.StatusFailed {
		return nil, errors.NewConflict("only failed items can be retried")
	}

	now := time.Now().UTC()
	it = queue.ResetForRetry(it, now)
	if err := db.UpsertQueueItem(database, it); err != nil {
		return nil, err
	}
	if err := db.InsertActivity(database, queue.Entry{
		ID: mustULID(), At: now, Kind: queue.EntryRetried, Level: queue.LevelInfo,
		ItemID: it.ID, Message: "Retry requested: " + queue.Preview(it.Posts),
	}); err != nil {
		return nil, err
	}

	return &RetryOutput{Item: it}, nil
}

// CancelOutput contains the result of the Cancel operation.
type CancelOutput struct {
	Cancelled string `json:"cancelled"`
}

// Cancel removes an item from the queue without publishing it.
func Cancel(database *sql.DB, id string) (*CancelOutput, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	it, err := db.GetQueueItem(database, id)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteQueueItem(database, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := db.InsertActivity(database, queue.Entry{
		ID: mustULID(), At: now, Kind: queue.EntryCancelled, Level: queue.LevelInfo,
		ItemID: id, Message: "Cancelled: " + queue.Preview(it.Posts),
	}); err != nil {
		return nil, err
	}

	return &CancelOutput{Cancelled: id}, nil
}
