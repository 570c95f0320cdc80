package state

import (
	"testing"
	"time"

	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/queue"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeEmptySnapshot(t *testing.T) {
	s := Normalize(Snapshot{}, base)
	if s.Version != Version {
		t.Errorf("version %d", s.Version)
	}
	if s.Drafts == nil || s.Queue == nil || s.Published == nil || s.Activity == nil || s.Whitelist == nil {
		t.Error("nil slices survived normalization")
	}
}

func TestNormalizeRepairsQueueItems(t *testing.T) {
	retryAt := base
	s := Normalize(Snapshot{Queue: []queue.Item{
		{ID: "a", Status: "bogus", MaxAttempts: 0, AttemptCount: -3, NextRetryAt: &retryAt, PublishAt: base},
		{ID: "", Status: queue.StatusPending},
	}}, base)
	if len(s.Queue) != 1 {
		t.Fatalf("got %d items", len(s.Queue))
	}
	it := s.Queue[0]
	if it.Status != queue.StatusPending || it.MaxAttempts != queue.DefaultMaxAttempts || it.AttemptCount != 0 {
		t.Errorf("item not repaired: %+v", it)
	}
	if it.NextRetryAt != nil {
		t.Error("pending item kept a retry time")
	}
}

func TestNormalizeFiltersUnknownRules(t *testing.T) {
	s := Normalize(Snapshot{RuleState: map[string]bool{"R001": false, "R999": true}}, base)
	if _, ok := s.RuleState["R999"]; ok {
		t.Error("unknown rule survived")
	}
	if enabled, ok := s.RuleState["R001"]; !ok || enabled {
		t.Errorf("known rule override lost: %v %v", enabled, ok)
	}
}

func TestNormalizeCleansWhitelist(t *testing.T) {
	s := Normalize(Snapshot{Whitelist: []string{" GitHub ", "", "GitHub", "Wi-Fi"}}, base)
	if len(s.Whitelist) != 2 {
		t.Errorf("got %v", s.Whitelist)
	}
}

func TestNormalizeSortsAndTrimsActivity(t *testing.T) {
	var entries []queue.Entry
	for i := 0; i < 100; i++ {
		entries = append(entries, queue.Entry{At: base.Add(time.Duration(i) * time.Minute)})
	}
	s := Normalize(Snapshot{Activity: entries}, base)
	if len(s.Activity) != 80 {
		t.Fatalf("len %d", len(s.Activity))
	}
	if !s.Activity[0].At.After(s.Activity[1].At) {
		t.Error("activity not newest-first")
	}
	if !s.Activity[0].At.Equal(base.Add(99 * time.Minute)) {
		t.Errorf("newest entry lost: %v", s.Activity[0].At)
	}
}

func TestNormalizeSanitizesDraftText(t *testing.T) {
	s := Normalize(Snapshot{Drafts: []draft.Draft{{
		ID:    "d1",
		Posts: []draft.Post{{Text: "<p onclick=x>hi</p>"}},
	}}}, base)
	if s.Drafts[0].Posts[0].Text != "<p>hi</p>" {
		t.Errorf("got %q", s.Drafts[0].Posts[0].Text)
	}
}

func TestNormalizeBackfillsTimestamps(t *testing.T) {
	s := Normalize(Snapshot{
		Drafts:    []draft.Draft{{ID: "d1"}},
		Queue:     []queue.Item{{ID: "q1", Status: queue.StatusPending}},
		Published: []queue.PublishedItem{{ID: "p1"}},
		Activity:  []queue.Entry{{ID: "e1", Message: "m"}},
	}, base)

	d := s.Drafts[0]
	if !d.CreatedAt.Equal(base) || !d.UpdatedAt.Equal(base) {
		t.Errorf("draft timestamps not backfilled: %v %v", d.CreatedAt, d.UpdatedAt)
	}
	it := s.Queue[0]
	if !it.PublishAt.Equal(base) || !it.CreatedAt.Equal(base) || !it.UpdatedAt.Equal(base) {
		t.Errorf("queue timestamps not backfilled: %+v", it)
	}
	if !s.Published[0].PublishedAt.Equal(base) {
		t.Errorf("published timestamp not backfilled: %v", s.Published[0].PublishedAt)
	}
	e := s.Activity[0]
	if !e.At.Equal(base) || e.Level != queue.LevelInfo {
		t.Errorf("activity entry not repaired: %+v", e)
	}
}
