package ops

import (
	"database/sql"
	"time"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/counter"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/queue"
)

// CreateDraftInput contains parameters for the CreateDraft operation.
type CreateDraftInput struct {
	Title string
	Posts []draft.Post
}

// CreateDraftOutput contains the result of the CreateDraft operation.
type CreateDraftOutput struct {
	Draft draft.Draft `json:"draft"`
}

// CreateDraft creates a new draft with sanitized posts.
func CreateDraft(database *sql.DB, cfg *config.Config, input CreateDraftInput) (*CreateDraftOutput, error) {
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().UTC()
	d := draft.Draft{
		ID:        id,
		Title:     input.Title,
		Posts:     input.Posts,
		CreatedAt: now,
		UpdatedAt: now,
	}.Normalize()

	if err := validatePosts(d.Posts, cfg); err != nil {
		return nil, err
	}

	if err := db.InsertDraft(database, d); err != nil {
		return nil, err
	}
	return &CreateDraftOutput{Draft: d}, nil
}

// UpdateDraftInput contains parameters for the UpdateDraft operation.
// Nil fields are left unchanged.
type UpdateDraftInput struct {
	ID    string
	Title *string
	Posts []draft.Post
}

// UpdateDraftOutput contains the result of the UpdateDraft operation.
type UpdateDraftOutput struct {
	Draft draft.Draft `json:"draft"`
}

// UpdateDraft rewrites a draft's title and/or posts.
func UpdateDraft(database *sql.DB, cfg *config.Config, input UpdateDraftInput) (*UpdateDraftOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	d, err := db.GetDraft(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		d.Title = *input.Title
	}
	if input.Posts != nil {
		d.Posts = input.Posts
	}
	d.UpdatedAt = time.Now().UTC()
	d = d.Normalize()

	if err := validatePosts(d.Posts, cfg); err != nil {
		return nil, err
	}

	if err := db.UpdateDraft(database, d); err != nil {
		return nil, err
	}
	return &UpdateDraftOutput{Draft: d}, nil
}

// GetDraftOutput contains the result of the GetDraft operation.
type GetDraftOutput struct {
	Draft   draft.Draft `json:"draft"`
	Preview string      `json:"preview"`
}

// GetDraft retrieves one draft by ID.
func GetDraft(database *sql.DB, id string) (*GetDraftOutput, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	d, err := db.GetDraft(database, id)
	if err != nil {
		return nil, err
	}
	return &GetDraftOutput{Draft: d, Preview: queue.Preview(d.Posts)}, nil
}

// DraftSummary is one row of a draft listing.
type DraftSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	PostCount int       `json:"post_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListDraftsOutput contains the result of the ListDrafts operation.
type ListDraftsOutput struct {
	Drafts []DraftSummary `json:"drafts"`
	Total  int            `json:"total"`
}

// ListDrafts lists all drafts, most recently updated first.
func ListDrafts(database *sql.DB) (*ListDraftsOutput, error) {
	drafts, err := db.ListDrafts(database)
	if err != nil {
		return nil, err
	}
	out := &ListDraftsOutput{Drafts: []DraftSummary{}, Total: len(drafts)}
	for _, d := range drafts {
		out.Drafts = append(out.Drafts, DraftSummary{
			ID:        d.ID,
			Title:     d.Title,
			Preview:   queue.Preview(d.Posts),
			PostCount: len(d.Posts),
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteDraftOutput contains the result of the DeleteDraft operation.
type DeleteDraftOutput struct {
	Deleted string `json:"deleted"`
}

// DeleteDraft removes a draft by ID.
func DeleteDraft(database *sql.DB, id string) (*DeleteDraftOutput, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteDraft(database, id); err != nil {
		return nil, err
	}
	return &DeleteDraftOutput{Deleted: id}, nil
}

// validatePosts rejects a thread when any post exceeds the weighted
// character limit. Posts are weighed as the tweet text they will
// publish as, prefix glyphs included.
func validatePosts(posts []draft.Post, cfg *config.Config) error {
	limit := counter.CharLimit
	if cfg != nil && cfg.CharLimit > 0 {
		limit = cfg.CharLimit
	}
	for _, p := range posts {
		w := counter.DefaultWeigher{}.Weigh(p.TweetText())
		if w.WeightedLength > limit {
			return errors.NewDraftTooLarge(limit, w.WeightedLength)
		}
	}
	return nil
}
