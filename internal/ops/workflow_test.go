package ops

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/counter"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/draft"
	qerrors "github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/queue"
)

// TestFullWorkflow exercises the complete thread lifecycle:
// create → lint → fix → compose → schedule → run → published.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()

	// 1. Create a draft with a lintable CJK/Latin boundary.
	createOut, err := CreateDraft(database, cfg, CreateDraftInput{
		Title: "Launch note",
		Posts: []draft.Post{{Text: "<p>我爱Python编程</p>"}},
	})
	require.NoError(t, err)
	id := createOut.Draft.ID
	require.NotEmpty(t, id)

	// 2. Lint finds the missing boundary spaces.
	lintOut, err := Lint(database, cfg, LintInput{DraftID: id})
	require.NoError(t, err)
	require.Equal(t, 2, lintOut.Total)
	require.Equal(t, "R001", lintOut.Posts[0].Issues[0].RuleID)

	// 3. Fix rewrites the draft in place.
	fixOut, err := Fix(database, cfg, FixInput{DraftID: id})
	require.NoError(t, err)
	require.True(t, fixOut.Changed)
	require.Equal(t, "我爱 Python 编程", fixOut.Texts[0])

	lintOut, err = Lint(database, cfg, LintInput{DraftID: id})
	require.NoError(t, err)
	require.Zero(t, lintOut.Total)

	// 4. Compose renders the corrected draft.
	composeOut, err := Compose(database, ComposeInput{DraftID: id, Format: FormatPlain})
	require.NoError(t, err)
	require.Equal(t, []string{"我爱 Python 编程"}, composeOut.Posts)

	// 5. Schedule consumes the draft into the queue.
	schedOut, err := Schedule(database, cfg, ScheduleInput{DraftID: id})
	require.NoError(t, err)
	require.Equal(t, queue.StatusPending, schedOut.Item.Status)

	_, err = GetDraft(database, id)
	require.True(t, qerrors.Is(err, qerrors.ErrNotFound))

	// 6. Run with an always-succeeding attempter.
	runOut, err := RunDue(context.Background(), database, cfg, RunDueInput{
		Attempter: queue.AttempterFunc(func(context.Context, queue.Item) (queue.Metrics, error) {
			return queue.Metrics{Impressions: 42}, nil
		}),
	})
	require.NoError(t, err)
	require.Equal(t, 1, runOut.Succeeded)
	require.Zero(t, runOut.Remaining)

	pubOut, err := ListPublished(database)
	require.NoError(t, err)
	require.Len(t, pubOut.Items, 1)
	require.Equal(t, 42, pubOut.Items[0].Item.Metrics.Impressions)

	actOut, err := ListActivity(database)
	require.NoError(t, err)
	require.Len(t, actOut.Entries, 2)
	require.Equal(t, queue.EntryPublished, actOut.Entries[0].Kind)
	require.Equal(t, queue.EntryScheduled, actOut.Entries[1].Kind)
}

// TestFailureAndRetryWorkflow exercises the retry ladder:
// schedule → fail → fail → fail (terminal) → manual retry → publish.
func TestFailureAndRetryWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()

	createOut, err := CreateDraft(database, cfg, CreateDraftInput{
		Title: "Flaky",
		Posts: []draft.Post{{Text: "<p>hello</p>"}},
	})
	require.NoError(t, err)

	_, err = Schedule(database, cfg, ScheduleInput{DraftID: createOut.Draft.ID})
	require.NoError(t, err)

	failing := queue.AttempterFunc(func(context.Context, queue.Item) (queue.Metrics, error) {
		return queue.Metrics{}, errors.New("network down")
	})

	// First failure schedules a retry, so the item is no longer due.
	runOut, err := RunDue(context.Background(), database, cfg, RunDueInput{Attempter: failing})
	require.NoError(t, err)
	require.Equal(t, 1, runOut.Failed)

	runOut, err = RunDue(context.Background(), database, cfg, RunDueInput{Attempter: failing})
	require.NoError(t, err)
	require.Zero(t, runOut.Attempted)

	queueOut, err := ListQueue(database)
	require.NoError(t, err)
	require.Len(t, queueOut.Items, 1)
	item := queueOut.Items[0].Item
	require.Equal(t, queue.StatusFailed, item.Status)
	require.Equal(t, 1, item.AttemptCount)
	require.NotNil(t, item.NextRetryAt)

	// Manual retry makes it due immediately; a working attempter lands it.
	_, err = Retry(database, item.ID)
	require.NoError(t, err)

	runOut, err = RunDue(context.Background(), database, cfg, RunDueInput{
		Attempter: queue.AttempterFunc(func(context.Context, queue.Item) (queue.Metrics, error) {
			return queue.Metrics{}, nil
		}),
	})
	require.NoError(t, err)
	require.Equal(t, 1, runOut.Succeeded)
}

func TestCancelRemovesItem(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()

	createOut, err := CreateDraft(database, cfg, CreateDraftInput{
		Posts: []draft.Post{{Text: "<p>bye</p>"}},
	})
	require.NoError(t, err)
	schedOut, err := Schedule(database, cfg, ScheduleInput{DraftID: createOut.Draft.ID})
	require.NoError(t, err)

	_, err = Cancel(database, schedOut.Item.ID)
	require.NoError(t, err)

	queueOut, err := ListQueue(database)
	require.NoError(t, err)
	require.Empty(t, queueOut.Items)

	_, err = Cancel(database, schedOut.Item.ID)
	require.True(t, qerrors.Is(err, qerrors.ErrNotFound))
}

func TestSettingsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	// Disable a default-on rule and check the effective state.
	out, err := SetRule(database, SetRuleInput{RuleID: "R001", Enabled: false})
	require.NoError(t, err)
	for _, r := range out.Rules {
		if r.ID == "R001" {
			require.False(t, r.Enabled)
		}
	}

	_, err = SetRule(database, SetRuleInput{RuleID: "R999", Enabled: true})
	require.True(t, qerrors.Is(err, qerrors.ErrInvalidRequest))

	out, err = SetWhitelist(database, SetWhitelistInput{Terms: []string{"MyBrand", " MyBrand "}})
	require.NoError(t, err)
	require.Contains(t, out.Whitelist, "MyBrand")
	require.Contains(t, out.Whitelist, "GitHub")

	// The disabled rule stays off for lint runs.
	lintOut, err := Lint(database, config.DefaultConfig(), LintInput{Text: "我爱Python"})
	require.NoError(t, err)
	require.Zero(t, lintOut.Total)
}

func TestExportImportRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()

	createOut, err := CreateDraft(database, cfg, CreateDraftInput{
		Title: "Keep me",
		Posts: []draft.Post{{Text: "<p>content</p>"}},
	})
	require.NoError(t, err)
	_, err = SetWhitelist(database, SetWhitelistInput{Terms: []string{"MyBrand"}})
	require.NoError(t, err)

	exportOut, err := Export(database, cfg, ExportInput{BaseDir: tmpDir})
	require.NoError(t, err)
	require.Equal(t, 1, exportOut.Drafts)
	require.Equal(t, filepath.Dir(exportOut.Path), filepath.Join(tmpDir, "exports"))

	// Wipe by importing into a fresh workspace.
	freshDir := t.TempDir()
	fresh, err := db.Init(freshDir)
	require.NoError(t, err)
	defer fresh.Close()

	importOut, err := Import(fresh, ImportInput{Path: exportOut.Path})
	require.NoError(t, err)
	require.Equal(t, 1, importOut.Drafts)

	got, err := GetDraft(fresh, createOut.Draft.ID)
	require.NoError(t, err)
	require.Equal(t, "Keep me", got.Draft.Title)

	settings, err := GetSettings(fresh, nil)
	require.NoError(t, err)
	require.Contains(t, settings.Whitelist, "MyBrand")
}

func TestDraftTooLargeRejected(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.CharLimit = 10

	_, err = CreateDraft(database, cfg, CreateDraftInput{
		Posts: []draft.Post{{Text: "<p>this is far too long for ten</p>"}},
	})
	require.True(t, qerrors.Is(err, qerrors.ErrDraftTooLarge))
}

// Posts are weighed as the tweet text they publish as, so a heading
// prefix can push a post over the limit even when the bare words fit.
func TestValidationWeighsTweetText(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.CharLimit = counter.DefaultWeigher{}.Weigh("tight").WeightedLength

	_, err = CreateDraft(database, cfg, CreateDraftInput{
		Posts: []draft.Post{{Text: "<p>tight</p>"}},
	})
	require.NoError(t, err)

	_, err = CreateDraft(database, cfg, CreateDraftInput{
		Posts: []draft.Post{{Text: "<h1>tight</h1>"}},
	})
	require.True(t, qerrors.Is(err, qerrors.ErrDraftTooLarge))
}

func TestCountMeasuresTweetText(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	created, err := CreateDraft(database, cfg, CreateDraftInput{
		Posts: []draft.Post{{Text: "<h1>abc</h1>"}},
	})
	require.NoError(t, err)

	out, err := Count(database, cfg, CountInput{DraftID: created.Draft.ID})
	require.NoError(t, err)
	want := counter.DefaultWeigher{}.Weigh("◆ abc").WeightedLength
	require.Equal(t, want, out.Posts[0].WeightedLength)
}
