// Package state defines the portable workspace snapshot used by
// export and import, and the repair pass that makes foreign or stale
// snapshots safe to load.
package state

import (
	"sort"
	"time"

	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/lint"
	"github.com/quillpad/quill/internal/queue"
)

// Version is the current snapshot schema version.
const Version = 1

// Snapshot is the whole persisted workspace in one value.
type Snapshot struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Drafts     []draft.Draft         `json:"drafts"`
	Queue      []queue.Item          `json:"queue"`
	Published  []queue.PublishedItem `json:"published"`
	Activity   []queue.Entry         `json:"activity"`
	RuleState  map[string]bool       `json:"ruleState"`
	Whitelist  []string              `json:"whitelist"`
}

// Normalize repairs a snapshot in place of trusting it: slices become
// non-nil, drafts are re-sanitized, queue items get legal status and
// attempt bookkeeping, zero timestamps are backfilled with now, the
// rule map is filtered to known rules, and ordering invariants are
// restored.
func Normalize(s Snapshot, now time.Time) Snapshot {
	if s.Version == 0 {
		s.Version = Version
	}

	drafts := make([]draft.Draft, 0, len(s.Drafts))
	for _, d := range s.Drafts {
		if d.ID == "" {
			continue
		}
		d = d.Normalize()
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.UpdatedAt.IsZero() {
			d.UpdatedAt = now
		}
		drafts = append(drafts, d)
	}
	s.Drafts = drafts

	items := make([]queue.Item, 0, len(s.Queue))
	for _, it := range s.Queue {
		if it.ID == "" {
			continue
		}
		items = append(items, repairItem(it, now))
	}
	queue.SortQueue(items)
	s.Queue = items

	published := make([]queue.PublishedItem, 0, len(s.Published))
	for _, p := range s.Published {
		if p.ID == "" {
			continue
		}
		if p.PublishedAt.IsZero() {
			p.PublishedAt = now
		}
		published = append(published, p)
	}
	queue.SortPublished(published)
	s.Published = published

	activity := s.Activity
	for i := range activity {
		if activity[i].At.IsZero() {
			activity[i].At = now
		}
		switch activity[i].Level {
		case queue.LevelInfo, queue.LevelWarn, queue.LevelError:
		default:
			activity[i].Level = queue.LevelInfo
		}
	}
	sort.SliceStable(activity, func(i, j int) bool { return activity[i].At.After(activity[j].At) })
	var trimmed []queue.Entry
	for i := len(activity) - 1; i >= 0; i-- {
		trimmed = queue.AppendActivity(trimmed, activity[i])
	}
	s.Activity = trimmed
	if s.Activity == nil {
		s.Activity = []queue.Entry{}
	}

	ruleState := make(map[string]bool)
	for id, enabled := range s.RuleState {
		if lint.RuleByID(id) != nil {
			ruleState[id] = enabled
		}
	}
	s.RuleState = ruleState

	s.Whitelist = lint.CleanTerms(s.Whitelist)
	if s.Whitelist == nil {
		s.Whitelist = []string{}
	}

	return s
}

// repairItem forces a queue item back into a legal shape.
func repairItem(it queue.Item, now time.Time) queue.Item {
	if it.Status != queue.StatusPending && it.Status != queue.StatusFailed {
		it.Status = queue.StatusPending
	}
	if it.PublishAt.IsZero() {
		it.PublishAt = now
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}
	if it.MaxAttempts <= 0 {
		it.MaxAttempts = queue.DefaultMaxAttempts
	}
	if it.AttemptCount < 0 {
		it.AttemptCount = 0
	}
	if it.Status == queue.StatusPending {
		it.NextRetryAt = nil
		it.AttemptCount = 0
	}
	if it.Terminal() {
		it.NextRetryAt = nil
	}
	posts := make([]draft.Post, len(it.Posts))
	for i, p := range it.Posts {
		posts[i] = p.Normalize()
	}
	it.Posts = posts
	return it
}
