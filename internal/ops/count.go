package ops

import (
	"database/sql"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/counter"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
)

// CountInput contains parameters for the Count operation. Exactly one
// of DraftID or Text must be set.
type CountInput struct {
	DraftID string
	Text    string
}

// PostCount is the measurement of one post.
type PostCount struct {
	Post int `json:"post"`
	counter.Result
}

// CountOutput contains the result of the Count operation.
type CountOutput struct {
	Posts []PostCount `json:"posts"`
	Valid bool        `json:"valid"`
}

// Count measures each post of a draft (or a raw text) against the
// weighted character limit. Draft posts are measured as the tweet
// text they will publish as.
func Count(database *sql.DB, cfg *config.Config, input CountInput) (*CountOutput, error) {
	texts, err := countTexts(database, input)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, errors.NewInvalidRequest("nothing to measure")
	}

	out := &CountOutput{Posts: []PostCount{}, Valid: true}
	for i, text := range texts {
		res := counter.Measure(text, nil)
		if cfg != nil && cfg.CharLimit > 0 && cfg.CharLimit != counter.CharLimit {
			res.Remaining = cfg.CharLimit - res.WeightedLength
			res.Valid = res.WeightedLength <= cfg.CharLimit
			res.Permillage = res.WeightedLength * 1000 / cfg.CharLimit
		}
		if !res.Valid {
			out.Valid = false
		}
		out.Posts = append(out.Posts, PostCount{Post: i, Result: res})
	}
	return out, nil
}

// countTexts resolves the operation target to tweet-rendered texts.
func countTexts(database *sql.DB, input CountInput) ([]string, error) {
	hasDraft := input.DraftID != ""
	hasText := input.Text != ""
	if hasDraft == hasText {
		return nil, errors.NewInvalidRequest("specify exactly one of draft id or text")
	}
	if hasText {
		return []string{input.Text}, nil
	}

	d, err := db.GetDraft(database, input.DraftID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(d.Posts))
	for i, p := range d.Posts {
		texts[i] = p.TweetText()
	}
	return texts, nil
}
