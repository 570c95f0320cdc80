package publish

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/queue"
)

func item(id string, texts ...string) queue.Item {
	posts := make([]draft.Post, len(texts))
	for i, t := range texts {
		posts[i] = draft.Post{Text: "<p>" + t + "</p>"}
	}
	return queue.Item{ID: id, Posts: posts, MaxAttempts: queue.DefaultMaxAttempts}
}

type fakePublisher struct {
	calls   []string // "text<-inReplyTo"
	failOn  int
	counter int
}

func (f *fakePublisher) Publish(_ context.Context, post draft.Post, inReplyTo string) (string, error) {
	f.counter++
	f.calls = append(f.calls, post.Text+"<-"+inReplyTo)
	if f.counter == f.failOn {
		return "", errors.New("refused")
	}
	return "id-" + post.Text, nil
}

func TestThreadAttempterChainsReplies(t *testing.T) {
	pub := &fakePublisher{}
	_, err := ThreadAttempter{Publisher: pub}.Attempt(context.Background(), item("a", "one", "two", "three"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"<p>one</p><-",
		"<p>two</p><-id-<p>one</p>",
		"<p>three</p><-id-<p>two</p>",
	}
	for i, w := range want {
		if pub.calls[i] != w {
			t.Errorf("call %d: got %q, want %q", i, pub.calls[i], w)
		}
	}
}

func TestThreadAttempterAbortsOnFailure(t *testing.T) {
	pub := &fakePublisher{failOn: 2}
	_, err := ThreadAttempter{Publisher: pub}.Attempt(context.Background(), item("a", "one", "two", "three"))
	if err == nil || !strings.Contains(err.Error(), "post 2/3") {
		t.Fatalf("err = %v", err)
	}
	if len(pub.calls) != 2 {
		t.Errorf("publisher called %d times after abort, want 2", len(pub.calls))
	}
}

func TestSimulatedDeterministic(t *testing.T) {
	it := item("ulid-1", "hello world")
	sim := Simulated{}

	m1, err1 := sim.Attempt(context.Background(), it)
	m2, err2 := sim.Attempt(context.Background(), it)
	if (err1 == nil) != (err2 == nil) || m1 != m2 {
		t.Errorf("same item produced different outcomes: %v/%v %v/%v", m1, err1, m2, err2)
	}
}

func TestSimulatedThirdAttemptAlwaysSucceeds(t *testing.T) {
	sim := Simulated{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		it := item(id, "text "+id)
		it.AttemptCount = 2
		if _, err := sim.Attempt(context.Background(), it); err != nil {
			t.Errorf("item %q failed on attempt 3: %v", id, err)
		}
	}
}

func TestSimulatedMetricsShape(t *testing.T) {
	sim := Simulated{}
	it := item("metrics", "some content")
	it.AttemptCount = 2
	m, err := sim.Attempt(context.Background(), it)
	if err != nil {
		t.Fatal(err)
	}
	if m.Impressions < 500 {
		t.Errorf("impressions %d below floor", m.Impressions)
	}
	if m.Likes > m.Impressions || m.Reposts > m.Likes || m.Bookmarks > m.Likes {
		t.Errorf("implausible metrics: %+v", m)
	}
	if m.Bookmarks < 0 || m.ProfileClicks < 0 {
		t.Errorf("negative engagement fields: %+v", m)
	}
	if m.EngagementRate < 0 || m.EngagementRate > 100 {
		t.Errorf("engagement rate %v out of range", m.EngagementRate)
	}
	engagements := m.Likes + m.Reposts + m.Replies + m.Bookmarks + m.ProfileClicks
	want := math.Round(float64(engagements)/float64(m.Impressions)*100*100) / 100
	if m.EngagementRate != want {
		t.Errorf("engagement rate %v, want %v", m.EngagementRate, want)
	}
}

func TestWebhookPublisher(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(webhookResponse{ID: "remote-1"})
	}))
	defer srv.Close()

	pub := WebhookPublisher{Endpoint: srv.URL, Token: "tok"}
	id, err := pub.Publish(context.Background(), draft.Post{Text: "<p>hi <strong>x</strong></p>"}, "prev-9")
	if err != nil {
		t.Fatal(err)
	}
	if id != "remote-1" {
		t.Errorf("id %q", id)
	}
	if got.Text != "hi x" || got.InReplyTo != "prev-9" || got.Markup == "" {
		t.Errorf("payload %+v", got)
	}
}

func TestWebhookPublisherSendsTweetText(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(webhookResponse{ID: "remote-2"})
	}))
	defer srv.Close()

	pub := WebhookPublisher{Endpoint: srv.URL}
	if _, err := pub.Publish(context.Background(), draft.Post{Text: "<h1>Big news</h1>"}, ""); err != nil {
		t.Fatal(err)
	}
	if got.Text != "◆ Big news" {
		t.Errorf("payload text %q, want heading prefix kept", got.Text)
	}
}

func TestWebhookPublisherPermanentFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	pub := WebhookPublisher{Endpoint: srv.URL, Client: &http.Client{Timeout: 5 * time.Second}}
	if _, err := pub.Publish(context.Background(), draft.Post{Text: "<p>x</p>"}, ""); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("4xx retried: %d calls", calls)
	}
}
