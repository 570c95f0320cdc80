package mcp

import "github.com/mark3labs/mcp-go/mcp"

// postsSchema describes the posts array accepted by draft tools. Each
// entry mirrors draft.Post.
var postsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text": map[string]any{
			"type":        "string",
			"description": "Rich markup or shorthand for one post",
		},
		"media": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{"type": "string", "enum": []string{"image", "video", "gif"}},
					"ref":  map[string]any{"type": "string"},
					"alt":  map[string]any{"type": "string"},
				},
			},
		},
		"poll": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"options":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"durationMinutes": map[string]any{"type": "integer"},
			},
		},
	},
}

var draftCreateToolDef = mcp.NewTool("draft_create",
	mcp.WithDescription("Create a new thread draft. Post text is sanitized rich markup or markdown-like shorthand."),
	mcp.WithString("title", mcp.Description("Draft title")),
	mcp.WithArray("posts", mcp.Description("Thread posts in order"), mcp.Items(postsSchema)),
)

var draftUpdateToolDef = mcp.NewTool("draft_update",
	mcp.WithDescription("Update a draft's title and/or posts. Omitted fields are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft ULID")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithArray("posts", mcp.Description("Replacement posts"), mcp.Items(postsSchema)),
)

var draftGetToolDef = mcp.NewTool("draft_get",
	mcp.WithDescription("Fetch one draft with its preview."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft ULID")),
)

var draftListToolDef = mcp.NewTool("draft_list",
	mcp.WithDescription("List drafts, most recently updated first."),
)

var draftDeleteToolDef = mcp.NewTool("draft_delete",
	mcp.WithDescription("Delete a draft."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft ULID")),
)

var lintToolDef = mcp.NewTool("lint",
	mcp.WithDescription("Check a draft (or raw text) against the CJK/Latin typography rules. Specify exactly one of id or text."),
	mcp.WithString("id", mcp.Description("Draft ULID")),
	mcp.WithString("text", mcp.Description("Raw text to lint instead of a draft")),
)

var fixToolDef = mcp.NewTool("fix",
	mcp.WithDescription("Apply lint autofixes to a draft (writes back) or raw text. rule_id limits the fix to one rule."),
	mcp.WithString("id", mcp.Description("Draft ULID")),
	mcp.WithString("text", mcp.Description("Raw text to fix instead of a draft")),
	mcp.WithString("rule_id", mcp.Description("Apply only this rule, e.g. R001")),
)

var countToolDef = mcp.NewTool("count",
	mcp.WithDescription("Measure posts against the weighted character limit (URLs cost 23, wide runes 2)."),
	mcp.WithString("id", mcp.Description("Draft ULID")),
	mcp.WithString("text", mcp.Description("Raw text to measure instead of a draft")),
)

var composeToolDef = mcp.NewTool("compose",
	mcp.WithDescription("Render a draft as plain, tweet, markdown, rich, or html output."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft ULID")),
	mcp.WithString("format", mcp.Description("One of: plain, tweet, markdown, rich, html (default plain)")),
	mcp.WithBoolean("styled", mcp.Description("Tweet format: map bold/italic to Unicode styled characters")),
)

var scheduleToolDef = mcp.NewTool("schedule",
	mcp.WithDescription("Move a draft into the publish queue. The draft is consumed unless keep_draft is set."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft ULID")),
	mcp.WithString("publish_at", mcp.Description("RFC 3339 time; omit for immediately")),
	mcp.WithBoolean("keep_draft", mcp.Description("Keep the draft after scheduling")),
)

var runDueToolDef = mcp.NewTool("run_due",
	mcp.WithDescription("Attempt every due queue item once. Failures back off 2m/10m/30m and go terminal after the attempt budget."),
)

var retryToolDef = mcp.NewTool("retry",
	mcp.WithDescription("Reset a failed queue item: attempts back to zero, due immediately."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Queue item ULID")),
)

var cancelToolDef = mcp.NewTool("cancel",
	mcp.WithDescription("Remove an item from the queue without publishing."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Queue item ULID")),
)

var queueListToolDef = mcp.NewTool("queue_list",
	mcp.WithDescription("List the publish queue, soonest due first."),
)

var publishedListToolDef = mcp.NewTool("published_list",
	mcp.WithDescription("List published threads with their metrics, newest first."),
)

var activityToolDef = mcp.NewTool("activity",
	mcp.WithDescription("Show the activity log, newest first."),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Show every lint rule with its effective state and the effective whitelist."),
)

var ruleSetToolDef = mcp.NewTool("rule_set",
	mcp.WithDescription("Enable or disable one lint rule."),
	mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID, e.g. R005")),
	mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("New state")),
)

var whitelistSetToolDef = mcp.NewTool("whitelist_set",
	mcp.WithDescription("Replace the user whitelist terms (built-in terms are always kept)."),
	mcp.WithArray("terms", mcp.Required(), mcp.Description("Whitelist terms"),
		mcp.Items(map[string]any{"type": "string"})),
)

var exportToolDef = mcp.NewTool("export",
	mcp.WithDescription("Export the whole workspace to a snapshot file."),
	mcp.WithString("path", mcp.Description("Output file; defaults to the exports directory")),
)

var importToolDef = mcp.NewTool("import",
	mcp.WithDescription("Replace the workspace with a snapshot file. Atomic: all or nothing."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Snapshot file to load")),
)
