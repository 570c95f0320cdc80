package publish

import (
	"context"
	"errors"
	"math"

	"github.com/quillpad/quill/internal/queue"
)

// FNV-1a 32-bit parameters.
const (
	fnvBasis uint32 = 2166136261
	fnvPrime uint32 = 16777619
)

func fnv32a(s string) uint32 {
	h := fnvBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// Simulated is a deterministic attempter for local runs: whether an
// attempt fails, and the metrics it yields, both derive from a hash of
// the item, so repeated runs of the same state behave identically.
type Simulated struct{}

// Attempt implements queue.Attempter. The first attempt fails for
// roughly one item in seven, the second for one in thirty-one, and the
// third never, so every simulated thread eventually lands.
func (Simulated) Attempt(_ context.Context, it queue.Item) (queue.Metrics, error) {
	h := fnv32a(it.ID + "|" + queue.Preview(it.Posts))
	switch it.AttemptCount {
	case 0:
		if h%7 == 0 {
			return queue.Metrics{}, errors.New("simulated network error")
		}
	case 1:
		if h%31 == 0 {
			return queue.Metrics{}, errors.New("simulated rate limit")
		}
	}
	return simulatedMetrics(h), nil
}

func simulatedMetrics(h uint32) queue.Metrics {
	impressions := 500 + int(h%9500)
	likes := int(h>>3) % (impressions/10 + 1)
	reposts := int(h>>7) % (likes + 1)
	replies := int(h>>11) % (likes/2 + 1)
	bookmarks := int(h>>15) % (likes + 1)
	profileClicks := int(h>>19) % (impressions/20 + 1)
	engagements := likes + reposts + replies + bookmarks + profileClicks
	rate := float64(engagements) / float64(impressions) * 100
	return queue.Metrics{
		Impressions:    impressions,
		Likes:          likes,
		Reposts:        reposts,
		Replies:        replies,
		Bookmarks:      bookmarks,
		ProfileClicks:  profileClicks,
		EngagementRate: math.Round(rate*100) / 100,
	}
}
