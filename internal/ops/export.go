package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/lint"
	"github.com/quillpad/quill/internal/state"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// Path is the output file. Default: <baseDir>/exports/quill-<timestamp>.json.
	Path    string
	BaseDir string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string    `json:"path"`
	Drafts     int       `json:"drafts"`
	Queue      int       `json:"queue"`
	Published  int       `json:"published"`
	ExportedAt time.Time `json:"exported_at"`
}

// Export writes the whole workspace to a single snapshot file.
func Export(database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now().UTC()

	exportPath := input.Path
	if exportPath == "" {
		if input.BaseDir == "" {
			return nil, errors.NewInvalidRequest("path or base dir is required")
		}
		exportPath = filepath.Join(input.BaseDir, "exports",
			fmt.Sprintf("quill-%s.json", now.Format("20060102-150405")))
	}

	snapshot, err := collectSnapshot(database, cfg, now)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	// Write to temp file first, then atomic rename to preserve any
	// existing file on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Drafts:     len(snapshot.Drafts),
		Queue:      len(snapshot.Queue),
		Published:  len(snapshot.Published),
		ExportedAt: now,
	}, nil
}

// collectSnapshot reads the whole workspace into a state snapshot.
func collectSnapshot(database *sql.DB, cfg *config.Config, now time.Time) (state.Snapshot, error) {
	var s state.Snapshot

	drafts, err := db.ListDrafts(database)
	if err != nil {
		return s, err
	}
	items, err := db.ListQueue(database)
	if err != nil {
		return s, err
	}
	published, err := db.ListPublished(database)
	if err != nil {
		return s, err
	}
	activity, err := db.ListActivity(database)
	if err != nil {
		return s, err
	}

	// Stored overrides only; config-level disables are not baked into
	// the snapshot.
	ruleState := map[string]bool{}
	if stored, err := db.GetSetting(database, settingRuleState); err != nil {
		return s, err
	} else if stored != "" {
		if err := json.Unmarshal([]byte(stored), &ruleState); err != nil {
			return s, errors.NewInternal(err)
		}
	}
	var whitelist []string
	if stored, err := db.GetSetting(database, settingWhitelist); err != nil {
		return s, err
	} else if stored != "" {
		whitelist = strings.Split(stored, "\n")
	}

	return state.Normalize(state.Snapshot{
		Version:    state.Version,
		ExportedAt: now,
		Drafts:     drafts,
		Queue:      items,
		Published:  published,
		Activity:   activity,
		RuleState:  ruleState,
		Whitelist:  lint.CleanTerms(whitelist),
	}, now), nil
}
