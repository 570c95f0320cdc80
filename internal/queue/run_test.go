package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("pub-%d", n)
	}
}

func TestRunDuePublishesInOrder(t *testing.T) {
	items := []Item{
		pendingItem("b", base.Add(-time.Minute)),
		pendingItem("a", base.Add(-time.Hour)),
	}

	var order []string
	att := AttempterFunc(func(_ context.Context, it Item) (Metrics, error) {
		order = append(order, it.ID)
		return Metrics{Impressions: 10}, nil
	})

	res := RunDue(context.Background(), base, items, nil, nil, att, seqID())
	if res.Attempted != 2 || res.Succeeded != 2 || res.Failed != 0 {
		t.Fatalf("counts: %+v", res)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("attempt order %v", order)
	}
	if len(res.Queue) != 0 {
		t.Errorf("queue not drained: %+v", res.Queue)
	}
	if len(res.Published) != 2 || res.Published[0].Metrics.Impressions != 10 {
		t.Errorf("published: %+v", res.Published)
	}
	if len(res.Activity) != 2 || res.Activity[0].Kind != EntryPublished {
		t.Errorf("activity: %+v", res.Activity)
	}
}

func TestRunDueFailureKeepsItemQueued(t *testing.T) {
	items := []Item{pendingItem("a", base)}
	att := AttempterFunc(func(context.Context, Item) (Metrics, error) {
		return Metrics{}, errors.New("network down")
	})

	res := RunDue(context.Background(), base, items, nil, nil, att, seqID())
	if res.Failed != 1 || len(res.Published) != 0 {
		t.Fatalf("counts: %+v", res)
	}
	it := res.Queue[0]
	if it.Status != StatusFailed || it.AttemptCount != 1 || it.LastError != "network down" {
		t.Errorf("item: %+v", it)
	}
	if it.NextRetryAt == nil || !it.NextRetryAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("retry at %v", it.NextRetryAt)
	}
	if !strings.Contains(res.Activity[0].Message, "attempt 1/3") {
		t.Errorf("activity message %q", res.Activity[0].Message)
	}
}

func TestRunDueTerminalFailureMessage(t *testing.T) {
	it := pendingItem("a", base)
	it = MarkFailure(it, base, "x")
	it = MarkFailure(it, base, "x")
	retryAt := base
	it.NextRetryAt = &retryAt

	att := AttempterFunc(func(context.Context, Item) (Metrics, error) {
		return Metrics{}, errors.New("still broken")
	})
	res := RunDue(context.Background(), base, []Item{it}, nil, nil, att, seqID())

	got := res.Queue[0]
	if !got.Terminal() {
		t.Fatalf("item not terminal: %+v", got)
	}
	if !strings.Contains(res.Activity[0].Message, "permanently after 3 attempts") {
		t.Errorf("activity message %q", res.Activity[0].Message)
	}
	if got.IsDue(base.Add(24 * time.Hour)) {
		t.Error("terminal item became due again")
	}
}

func TestRunDueActivityLevels(t *testing.T) {
	terminal := pendingItem("t", base)
	terminal = MarkFailure(terminal, base, "x")
	terminal = MarkFailure(terminal, base, "x")
	retryAt := base
	terminal.NextRetryAt = &retryAt
	items := []Item{terminal, pendingItem("fresh", base), pendingItem("ok", base)}

	att := AttempterFunc(func(_ context.Context, it Item) (Metrics, error) {
		if it.ID == "ok" {
			return Metrics{Impressions: 1}, nil
		}
		return Metrics{}, errors.New("down")
	})
	res := RunDue(context.Background(), base, items, nil, nil, att, seqID())

	byItem := map[string]Entry{}
	for _, e := range res.Activity {
		byItem[e.ItemID] = e
	}
	if byItem["ok"].Level != LevelInfo {
		t.Errorf("publish level %q, want info", byItem["ok"].Level)
	}
	if byItem["fresh"].Level != LevelWarn {
		t.Errorf("retryable failure level %q, want warn", byItem["fresh"].Level)
	}
	if byItem["t"].Level != LevelError {
		t.Errorf("terminal failure level %q, want error", byItem["t"].Level)
	}
	for id, e := range byItem {
		if e.ID == "" {
			t.Errorf("entry for %q has no id", id)
		}
	}
}

func TestRunDueStampsAttempt(t *testing.T) {
	items := []Item{pendingItem("a", base.Add(-time.Minute))}
	att := AttempterFunc(func(context.Context, Item) (Metrics, error) {
		return Metrics{}, errors.New("down")
	})
	res := RunDue(context.Background(), base, items, nil, nil, att, seqID())

	it := res.Queue[0]
	if it.LastAttempt == nil || !it.LastAttempt.Equal(base) {
		t.Errorf("last attempt %v, want %v", it.LastAttempt, base)
	}
	if !it.UpdatedAt.Equal(base) {
		t.Errorf("updated at %v, want %v", it.UpdatedAt, base)
	}
}

func TestRunDueSkipsNotDue(t *testing.T) {
	items := []Item{pendingItem("later", base.Add(time.Hour))}
	att := AttempterFunc(func(context.Context, Item) (Metrics, error) {
		t.Fatal("attempter called for an item that is not due")
		return Metrics{}, nil
	})
	res := RunDue(context.Background(), base, items, nil, nil, att, seqID())
	if res.Attempted != 0 || len(res.Queue) != 1 {
		t.Errorf("got %+v", res)
	}
}

func TestRunDueRespectsCancellation(t *testing.T) {
	items := []Item{
		pendingItem("a", base.Add(-2*time.Minute)),
		pendingItem("b", base.Add(-time.Minute)),
	}
	ctx, cancel := context.WithCancel(context.Background())
	att := AttempterFunc(func(context.Context, Item) (Metrics, error) {
		cancel()
		return Metrics{}, nil
	})
	res := RunDue(ctx, base, items, nil, nil, att, seqID())
	if res.Attempted != 1 {
		t.Errorf("attempted %d after cancellation, want 1", res.Attempted)
	}
	if len(res.Queue) != 1 || res.Queue[0].ID != "b" {
		t.Errorf("queue: %+v", res.Queue)
	}
}

func TestPreview(t *testing.T) {
	posts := pendingItem("a", base).Posts
	if got := Preview(posts); got != "a" {
		t.Errorf("got %q", got)
	}

	empty := pendingItem("e", base)
	empty.Posts[0].Text = "<p></p>"
	if got := Preview(empty.Posts); got != EmptyPreview {
		t.Errorf("got %q", got)
	}

	long := pendingItem("l", base)
	long.Posts[0].Text = "<p>" + strings.Repeat("字", 200) + "</p>"
	got := Preview(long.Posts)
	if runes := []rune(got); len(runes) != 80 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncation: %d runes, %q", len([]rune(got)), got)
	}
}

func TestPreviewCollapsesWhitespace(t *testing.T) {
	item := pendingItem("w", base)
	item.Posts[0].Text = "<h1>Title</h1><p>first   line<br>second</p>"
	if got := Preview(item.Posts); got != "Title first line second" {
		t.Errorf("got %q", got)
	}
}

func TestAppendActivityCap(t *testing.T) {
	var log []Entry
	for i := 0; i < 100; i++ {
		log = AppendActivity(log, Entry{At: base.Add(time.Duration(i) * time.Second), Message: fmt.Sprint(i)})
	}
	if len(log) != 80 {
		t.Fatalf("len %d, want 80", len(log))
	}
	if log[0].Message != "99" || log[79].Message != "20" {
		t.Errorf("order: head %q tail %q", log[0].Message, log[79].Message)
	}
}
