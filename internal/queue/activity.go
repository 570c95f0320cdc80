package queue

import "time"

// activityCap bounds the retained activity log.
const activityCap = 80

// EntryKind classifies an activity log entry.
type EntryKind string

const (
	EntryScheduled EntryKind = "scheduled"
	EntryPublished EntryKind = "published"
	EntryFailed    EntryKind = "failed"
	EntryRetried   EntryKind = "retried"
	EntryCancelled EntryKind = "cancelled"
)

// Level is the severity of an activity log entry. Routine events log
// info, a retryable publish failure logs warn, and terminal exhaustion
// logs error.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one line of the activity log.
type Entry struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Kind    EntryKind `json:"kind"`
	Level   Level     `json:"level"`
	ItemID  string    `json:"itemId"`
	Message string    `json:"message"`
}

// AppendActivity prepends an entry and trims the log to its cap. The
// log is kept newest-first.
func AppendActivity(log []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(log)+1)
	out = append(out, e)
	out = append(out, log...)
	if len(out) > activityCap {
		out = out[:activityCap]
	}
	return out
}
