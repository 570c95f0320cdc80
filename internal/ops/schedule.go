package ops

import (
	"database/sql"
	"time"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/queue"
)

// ScheduleInput contains parameters for the Schedule operation.
type ScheduleInput struct {
	DraftID   string
	PublishAt time.Time // zero: due immediately
	// KeepDraft leaves the draft in place after scheduling. By default
	// the draft is consumed.
	KeepDraft bool
}

// ScheduleOutput contains the result of the Schedule operation.
type ScheduleOutput struct {
	Item queue.Item `json:"item"`
}

// Schedule snapshots a draft into the publish queue.
func Schedule(database *sql.DB, cfg *config.Config, input ScheduleInput) (*ScheduleOutput, error) {
	if input.DraftID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	d, err := db.GetDraft(database, input.DraftID)
	if err != nil {
		return nil, err
	}
	if err := validatePosts(d.Posts, cfg); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	publishAt := input.PublishAt.UTC()
	if input.PublishAt.IsZero() {
		publishAt = now
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	it := queue.NewItem(id, d, publishAt, now)
	if cfg != nil && cfg.MaxAttempts > 0 {
		it.MaxAttempts = cfg.MaxAttempts
	}

	if err := db.UpsertQueueItem(database, it); err != nil {
		return nil, err
	}
	if err := db.InsertActivity(database, queue.Entry{
		ID: mustULID(), At: now, Kind: queue.EntryScheduled, Level: queue.LevelInfo,
		ItemID: it.ID, Message: "Scheduled: " + queue.Preview(it.Posts),
	}); err != nil {
		return nil, err
	}

	if !input.KeepDraft {
		if err := db.DeleteDraft(database, d.ID); err != nil {
			return nil, err
		}
	}

	return &ScheduleOutput{Item: it}, nil
}
