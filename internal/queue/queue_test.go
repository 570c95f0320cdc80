package queue

import (
	"testing"
	"time"

	"github.com/quillpad/quill/internal/draft"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func pendingItem(id string, publishAt time.Time) Item {
	return NewItem(id, draft.Draft{Title: id, Posts: []draft.Post{{Text: "<p>" + id + "</p>"}}}, publishAt, base)
}

func TestRetryDelayEscalation(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Minute},
		{2, 10 * time.Minute},
		{3, 30 * time.Minute},
		{7, 30 * time.Minute},
		{0, 2 * time.Minute},
	}
	for _, tt := range tests {
		if got := RetryDelay(tt.attempt); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsDue(t *testing.T) {
	ready := pendingItem("a", base)
	if !ready.IsDue(base) {
		t.Error("item scheduled at now must be due")
	}
	future := pendingItem("b", base.Add(time.Hour))
	if future.IsDue(base) {
		t.Error("future item must not be due")
	}

	retryAt := base.Add(2 * time.Minute)
	failed := ready
	failed.Status = StatusFailed
	failed.AttemptCount = 1
	failed.NextRetryAt = &retryAt
	if failed.IsDue(base) {
		t.Error("failed item not due before its retry time")
	}
	if !failed.IsDue(retryAt) {
		t.Error("failed item due at its retry time")
	}

	terminal := failed
	terminal.AttemptCount = terminal.MaxAttempts
	terminal.NextRetryAt = nil
	if terminal.IsDue(base.Add(time.Hour)) {
		t.Error("terminal failure must never be due")
	}
}

func TestMarkFailureProgression(t *testing.T) {
	it := pendingItem("a", base)

	it = MarkFailure(it, base, "timeout")
	if it.Status != StatusFailed || it.AttemptCount != 1 || it.LastError != "timeout" {
		t.Fatalf("after first failure: %+v", it)
	}
	if it.NextRetryAt == nil || !it.NextRetryAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("first retry at %v, want +2m", it.NextRetryAt)
	}

	second := base.Add(2 * time.Minute)
	it = MarkFailure(it, second, "timeout")
	if it.NextRetryAt == nil || !it.NextRetryAt.Equal(second.Add(10*time.Minute)) {
		t.Fatalf("second retry at %v, want +10m", it.NextRetryAt)
	}

	third := second.Add(10 * time.Minute)
	it = MarkFailure(it, third, "timeout")
	if !it.Terminal() {
		t.Fatal("third failure must be terminal")
	}
	if it.NextRetryAt != nil {
		t.Error("terminal failure must clear the retry time")
	}
}

func TestResetForRetry(t *testing.T) {
	it := pendingItem("a", base)
	for i := 0; i < 3; i++ {
		it = MarkFailure(it, base, "boom")
	}
	now := base.Add(time.Hour)
	it = ResetForRetry(it, now)
	if it.Status != StatusPending || it.AttemptCount != 0 || !it.PublishAt.Equal(now) {
		t.Errorf("got %+v", it)
	}
	if it.NextRetryAt != nil || it.LastError != "" {
		t.Errorf("retry state not cleared: %+v", it)
	}
	if !it.IsDue(now) {
		t.Error("reset item must be immediately due")
	}
}

func TestEffectiveDueTimeAndSort(t *testing.T) {
	retryAt := base.Add(5 * time.Minute)
	failed := pendingItem("x", base)
	failed.Status = StatusFailed
	failed.AttemptCount = 1
	failed.NextRetryAt = &retryAt

	items := []Item{
		pendingItem("late", base.Add(time.Hour)),
		failed,
		pendingItem("soon", base.Add(time.Minute)),
	}
	SortQueue(items)
	got := []string{items[0].ID, items[1].ID, items[2].ID}
	want := []string{"soon", "x", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestDueSelection(t *testing.T) {
	items := []Item{
		pendingItem("b", base.Add(-time.Minute)),
		pendingItem("a", base.Add(-time.Hour)),
		pendingItem("c", base.Add(time.Minute)),
	}
	due := Due(items, base)
	if len(due) != 2 || due[0].ID != "a" || due[1].ID != "b" {
		t.Errorf("got %+v", due)
	}
}

func TestRemove(t *testing.T) {
	items := []Item{pendingItem("a", base), pendingItem("b", base)}
	rest, removed, ok := Remove(items, "a")
	if !ok || removed.ID != "a" || len(rest) != 1 || rest[0].ID != "b" {
		t.Errorf("got %+v %+v %v", rest, removed, ok)
	}
	if _, _, ok := Remove(rest, "missing"); ok {
		t.Error("removing a missing id must report false")
	}
}
