package ops

import (
	"database/sql"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/state"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Drafts    int `json:"drafts"`
	Queue     int `json:"queue"`
	Published int `json:"published"`
	Activity  int `json:"activity"`
}

// Import replaces the whole workspace with a snapshot file. The import
// runs in one transaction: either the full snapshot lands or nothing
// changes. Foreign snapshots are repaired before loading.
func Import(database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(input.Path)
		}
		return nil, errors.NewInternal(err)
	}

	var snapshot state.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.NewInvalidRequest("not a quill snapshot: " + err.Error())
	}
	if snapshot.Version > state.Version {
		return nil, errors.NewInvalidRequest("snapshot version is newer than this build supports")
	}
	snapshot = state.Normalize(snapshot, time.Now())

	tx, err := database.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	if err := db.ClearWorkspace(tx); err != nil {
		return nil, err
	}
	for _, d := range snapshot.Drafts {
		if err := db.InsertDraft(tx, d); err != nil {
			return nil, err
		}
	}
	for _, it := range snapshot.Queue {
		if err := db.UpsertQueueItem(tx, it); err != nil {
			return nil, err
		}
	}
	for _, p := range snapshot.Published {
		if err := db.InsertPublished(tx, p); err != nil {
			return nil, err
		}
	}
	// Oldest first so the stored sequence matches the log order.
	for i := len(snapshot.Activity) - 1; i >= 0; i-- {
		if err := db.InsertActivity(tx, snapshot.Activity[i]); err != nil {
			return nil, err
		}
	}

	ruleJSON, err := json.Marshal(snapshot.RuleState)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.SetSetting(tx, settingRuleState, string(ruleJSON)); err != nil {
		return nil, err
	}
	if err := db.SetSetting(tx, settingWhitelist, strings.Join(snapshot.Whitelist, "\n")); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ImportOutput{
		Drafts:    len(snapshot.Drafts),
		Queue:     len(snapshot.Queue),
		Published: len(snapshot.Published),
		Activity:  len(snapshot.Activity),
	}, nil
}
