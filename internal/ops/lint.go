package ops

import (
	"database/sql"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/lint"
)

// LintInput contains parameters for the Lint operation. Exactly one of
// DraftID or Text must be set.
type LintInput struct {
	DraftID string
	Text    string
}

// PostIssues groups lint issues by their post index.
type PostIssues struct {
	Post   int          `json:"post"`
	Issues []lint.Issue `json:"issues"`
}

// LintOutput contains the result of the Lint operation.
type LintOutput struct {
	Posts []PostIssues `json:"posts"`
	Total int          `json:"total"`
}

// Lint checks a draft's posts (or a raw text) against the enabled
// rules and the effective whitelist.
func Lint(database *sql.DB, cfg *config.Config, input LintInput) (*LintOutput, error) {
	texts, err := lintTexts(database, input)
	if err != nil {
		return nil, err
	}

	state, err := effectiveRuleState(database, cfg)
	if err != nil {
		return nil, err
	}
	whitelist, err := effectiveWhitelist(database, cfg)
	if err != nil {
		return nil, err
	}

	out := &LintOutput{Posts: []PostIssues{}}
	for i, text := range texts {
		issues := lint.Lint(text, state, whitelist)
		out.Total += len(issues)
		out.Posts = append(out.Posts, PostIssues{Post: i, Issues: issues})
	}
	return out, nil
}

// FixInput contains parameters for the Fix operation. RuleID limits
// the fix to one rule; empty applies every enabled autofix.
type FixInput struct {
	DraftID string
	Text    string
	RuleID  string
}

// FixOutput contains the result of the Fix operation.
type FixOutput struct {
	Texts   []string `json:"texts"`
	Changed bool     `json:"changed"`
}

// Fix applies autofixes to a draft's posts (or a raw text). When
// DraftID is set the corrected posts are written back.
func Fix(database *sql.DB, cfg *config.Config, input FixInput) (*FixOutput, error) {
	texts, err := lintTexts(database, LintInput{DraftID: input.DraftID, Text: input.Text})
	if err != nil {
		return nil, err
	}

	state, err := effectiveRuleState(database, cfg)
	if err != nil {
		return nil, err
	}
	whitelist, err := effectiveWhitelist(database, cfg)
	if err != nil {
		return nil, err
	}

	if input.RuleID != "" && lint.RuleByID(input.RuleID) == nil {
		return nil, errors.NewInvalidRequest("unknown rule: " + input.RuleID)
	}

	out := &FixOutput{Texts: make([]string, len(texts))}
	for i, text := range texts {
		fixed := text
		if input.RuleID != "" {
			fixed = lint.Fix(text, input.RuleID, whitelist)
		} else {
			fixed = lint.FixAll(text, state, whitelist)
		}
		out.Texts[i] = fixed
		if fixed != text {
			out.Changed = true
		}
	}

	if input.DraftID != "" && out.Changed {
		if err := writeFixedPosts(database, cfg, input.DraftID, out.Texts); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// lintTexts resolves the operation target to plain-text posts.
func lintTexts(database *sql.DB, input LintInput) ([]string, error) {
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
		texts[i] = p.PlainText()
	}
	return texts, nil
}

// writeFixedPosts replaces each post's text with the fixed plain text,
// preserving media and polls. Rich formatting is intentionally dropped:
// autofix rewrites characters, and character positions do not survive
// markup round trips.
func writeFixedPosts(database *sql.DB, cfg *config.Config, draftID string, texts []string) error {
	d, err := db.GetDraft(database, draftID)
	if err != nil {
		return err
	}
	if len(texts) != len(d.Posts) {
		return errors.NewConflict("draft changed during fix")
	}
	for i := range d.Posts {
		d.Posts[i].Text = texts[i]
	}
	_, err = UpdateDraft(database, cfg, UpdateDraftInput{ID: draftID, Posts: d.Posts})
	return err
}
