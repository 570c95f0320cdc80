package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/queue"
)

// DBTX is the common surface of *sql.DB and *sql.Tx, so every query
// helper works both standalone and inside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.QuillError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

func toNullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromNullTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.UnixMilli(n.Int64).UTC()
	return &t
}

// InsertDraft stores a new draft.
func InsertDraft(q DBTX, d draft.Draft) error {
	postsJSON, err := marshalJSON(d.Posts)
	if err != nil {
		return err
	}
	_, err = q.Exec(`
		INSERT INTO drafts (id, title, posts_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Title, postsJSON, d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateDraft rewrites an existing draft's title, posts, and updated_at.
func UpdateDraft(q DBTX, d draft.Draft) error {
	postsJSON, err := marshalJSON(d.Posts)
	if err != nil {
		return err
	}
	res, err := q.Exec(`
		UPDATE drafts SET title = ?, posts_json = ?, updated_at = ?
		WHERE id = ?`,
		d.Title, postsJSON, d.UpdatedAt.UnixMilli(), d.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(d.ID)
	}
	return nil
}

// GetDraft retrieves a draft by ID.
func GetDraft(q DBTX, id string) (draft.Draft, error) {
	row := q.QueryRow(`
		SELECT id, title, posts_json, created_at, updated_at
		FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return draft.Draft{}, errors.NewNotFound(id)
	}
	if err != nil {
		return draft.Draft{}, errors.NewInternal(err)
	}
	return d, nil
}

// ListDrafts returns all drafts, most recently updated first.
func ListDrafts(q DBTX) ([]draft.Draft, error) {
	rows, err := q.Query(`
		SELECT id, title, posts_json, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	drafts := []draft.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft by ID.
func DeleteDraft(q DBTX, id string) error {
	res, err := q.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (draft.Draft, error) {
	var d draft.Draft
	var postsJSON string
	var createdAt, updatedAt int64
	if err := row.Scan(&d.ID, &d.Title, &postsJSON, &createdAt, &updatedAt); err != nil {
		return draft.Draft{}, err
	}
	if err := json.Unmarshal([]byte(postsJSON), &d.Posts); err != nil {
		return draft.Draft{}, err
	}
	d.CreatedAt = time.UnixMilli(createdAt).UTC()
	d.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return d, nil
}

// UpsertQueueItem inserts or replaces a queue item.
func UpsertQueueItem(q DBTX, it queue.Item) error {
	postsJSON, err := marshalJSON(it.Posts)
	if err != nil {
		return err
	}
	var lastError sql.NullString
	if it.LastError != "" {
		lastError = sql.NullString{String: it.LastError, Valid: true}
	}
	_, err = q.Exec(`
		INSERT INTO queue_items (
			id, draft_id, title, posts_json, status, publish_at,
			attempt_count, max_attempts, last_attempt_at, next_retry_at,
			last_error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			publish_at = excluded.publish_at,
			attempt_count = excluded.attempt_count,
			max_attempts = excluded.max_attempts,
			last_attempt_at = excluded.last_attempt_at,
			next_retry_at = excluded.next_retry_at,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at`,
		it.ID, it.DraftID, it.Title, postsJSON, string(it.Status), it.PublishAt.UnixMilli(),
		it.AttemptCount, it.MaxAttempts, toNullTime(it.LastAttempt), toNullTime(it.NextRetryAt),
		lastError, it.CreatedAt.UnixMilli(), it.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteQueueItem removes a queue item by ID.
func DeleteQueueItem(q DBTX, id string) error {
	res, err := q.Exec(`DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// GetQueueItem retrieves a queue item by ID.
func GetQueueItem(q DBTX, id string) (queue.Item, error) {
	row := q.QueryRow(queueSelect+` WHERE id = ?`, id)
	it, err := scanQueueItem(row)
	if err == sql.ErrNoRows {
		return queue.Item{}, errors.NewNotFound(id)
	}
	if err != nil {
		return queue.Item{}, errors.NewInternal(err)
	}
	return it, nil
}

const queueSelect = `
	SELECT id, draft_id, title, posts_json, status, publish_at,
		attempt_count, max_attempts, last_attempt_at, next_retry_at,
		last_error, created_at, updated_at
	FROM queue_items`

// ListQueue returns every queue item; ordering is left to the engine.
func ListQueue(q DBTX) ([]queue.Item, error) {
	rows, err := q.Query(queueSelect)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []queue.Item{}
	for rows.Next() {
		it, err := scanQueueItem(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

func scanQueueItem(row scanner) (queue.Item, error) {
	var it queue.Item
	var draftID, lastError sql.NullString
	var postsJSON, status string
	var publishAt, createdAt, updatedAt int64
	var lastAttempt, nextRetry sql.NullInt64
	err := row.Scan(&it.ID, &draftID, &it.Title, &postsJSON, &status, &publishAt,
		&it.AttemptCount, &it.MaxAttempts, &lastAttempt, &nextRetry,
		&lastError, &createdAt, &updatedAt)
	if err != nil {
		return queue.Item{}, err
	}
	if err := json.Unmarshal([]byte(postsJSON), &it.Posts); err != nil {
		return queue.Item{}, err
	}
	it.DraftID = draftID.String
	it.Status = queue.Status(status)
	it.PublishAt = time.UnixMilli(publishAt).UTC()
	it.LastAttempt = fromNullTime(lastAttempt)
	it.NextRetryAt = fromNullTime(nextRetry)
	it.LastError = lastError.String
	it.CreatedAt = time.UnixMilli(createdAt).UTC()
	it.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return it, nil
}

// InsertPublished stores a published record.
func InsertPublished(q DBTX, p queue.PublishedItem) error {
	postsJSON, err := marshalJSON(p.Posts)
	if err != nil {
		return err
	}
	metricsJSON, err := marshalJSON(p.Metrics)
	if err != nil {
		return err
	}
	_, err = q.Exec(`
		INSERT INTO published_items (id, draft_id, title, posts_json, published_at, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.DraftID, p.Title, postsJSON, p.PublishedAt.UnixMilli(), metricsJSON,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListPublished returns published records, newest first.
func ListPublished(q DBTX) ([]queue.PublishedItem, error) {
	rows, err := q.Query(`
		SELECT id, draft_id, title, posts_json, published_at, metrics_json
		FROM published_items ORDER BY published_at DESC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []queue.PublishedItem{}
	for rows.Next() {
		var p queue.PublishedItem
		var draftID sql.NullString
		var postsJSON, metricsJSON string
		var publishedAt int64
		if err := rows.Scan(&p.ID, &draftID, &p.Title, &postsJSON, &publishedAt, &metricsJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(postsJSON), &p.Posts); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &p.Metrics); err != nil {
			return nil, errors.NewInternal(err)
		}
		p.DraftID = draftID.String
		p.PublishedAt = time.UnixMilli(publishedAt).UTC()
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// activityCap bounds the retained activity rows; must match the engine.
const activityCap = 80

// InsertActivity appends an entry and trims the log to its cap.
func InsertActivity(q DBTX, e queue.Entry) error {
	_, err := q.Exec(`
		INSERT INTO activity_log (id, at, kind, level, item_id, message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UnixMilli(), string(e.Kind), string(e.Level), e.ItemID, e.Message,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = q.Exec(`
		DELETE FROM activity_log WHERE seq NOT IN (
			SELECT seq FROM activity_log ORDER BY seq DESC LIMIT ?
		)`, activityCap)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListActivity returns activity entries, newest first.
func ListActivity(q DBTX) ([]queue.Entry, error) {
	rows, err := q.Query(`
		SELECT id, at, kind, level, item_id, message
		FROM activity_log ORDER BY seq DESC LIMIT ?`, activityCap)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := []queue.Entry{}
	for rows.Next() {
		var e queue.Entry
		var at int64
		var kind, level string
		if err := rows.Scan(&e.ID, &at, &kind, &level, &e.ItemID, &e.Message); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.At = time.UnixMilli(at).UTC()
		e.Kind = queue.EntryKind(kind)
		e.Level = queue.Level(level)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// GetSetting reads one settings value. Missing keys return ("", nil).
func GetSetting(q DBTX, key string) (string, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return value, nil
}

// SetSetting writes one settings value.
func SetSetting(q DBTX, key, value string) error {
	_, err := q.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ClearWorkspace wipes every table. Used by import, inside a single
// transaction owned by the caller.
func ClearWorkspace(tx *sql.Tx) error {
	for _, table := range []string{"drafts", "queue_items", "published_items", "activity_log"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}
