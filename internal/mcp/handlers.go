package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// Request types for each tool

// DraftCreateRequest represents the arguments for draft_create.
type DraftCreateRequest struct {
	Title string       `json:"title,omitempty"`
	Posts []draft.Post `json:"posts,omitempty"`
}

// DraftUpdateRequest represents the arguments for draft_update.
type DraftUpdateRequest struct {
	ID    string       `json:"id"`
	Title *string      `json:"title,omitempty"`
	Posts []draft.Post `json:"posts,omitempty"`
}

// IDRequest represents the arguments of single-id tools.
type IDRequest struct {
	ID string `json:"id"`
}

// TargetRequest represents the arguments of draft-or-text tools.
type TargetRequest struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

// FixRequest represents the arguments for fix.
type FixRequest struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text,omitempty"`
	RuleID string `json:"rule_id,omitempty"`
}

// ComposeRequest represents the arguments for compose.
type ComposeRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
	Styled bool   `json:"styled,omitempty"`
}

// ScheduleRequest represents the arguments for schedule.
type ScheduleRequest struct {
	ID        string `json:"id"`
	PublishAt string `json:"publish_at,omitempty"`
	KeepDraft bool   `json:"keep_draft,omitempty"`
}

// RuleSetRequest represents the arguments for rule_set.
type RuleSetRequest struct {
	RuleID  string `json:"rule_id"`
	Enabled bool   `json:"enabled"`
}

// WhitelistSetRequest represents the arguments for whitelist_set.
type WhitelistSetRequest struct {
	Terms []string `json:"terms"`
}

// PathRequest represents the arguments for export and import.
type PathRequest struct {
	Path string `json:"path,omitempty"`
}

// HandleDraftCreate handles the draft_create tool.
func (h *Handlers) HandleDraftCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[DraftCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.CreateDraft(h.db, h.cfg, ops.CreateDraftInput{Title: args.Title, Posts: args.Posts})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDraftUpdate handles the draft_update tool.
func (h *Handlers) HandleDraftUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[DraftUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.UpdateDraft(h.db, h.cfg, ops.UpdateDraftInput{ID: args.ID, Title: args.Title, Posts: args.Posts})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDraftGet handles the draft_get tool.
func (h *Handlers) HandleDraftGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.GetDraft(h.db, args.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDraftList handles the draft_list tool.
func (h *Handlers) HandleDraftList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListDrafts(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDraftDelete handles the draft_delete tool.
func (h *Handlers) HandleDraftDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteDraft(h.db, args.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLint handles the lint tool.
func (h *Handlers) HandleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[TargetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Lint(h.db, h.cfg, ops.LintInput{DraftID: args.ID, Text: args.Text})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFix handles the fix tool.
func (h *Handlers) HandleFix(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[FixRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Fix(h.db, h.cfg, ops.FixInput{DraftID: args.ID, Text: args.Text, RuleID: args.RuleID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCount handles the count tool.
func (h *Handlers) HandleCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[TargetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Count(h.db, h.cfg, ops.CountInput{DraftID: args.ID, Text: args.Text})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCompose handles the compose tool.
func (h *Handlers) HandleCompose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[ComposeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Compose(h.db, ops.ComposeInput{
		DraftID: args.ID,
		Format:  ops.ComposeFormat(args.Format),
		Styled:  args.Styled,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSchedule handles the schedule tool.
func (h *Handlers) HandleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[ScheduleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var publishAt time.Time
	if args.PublishAt != "" {
		publishAt, err = time.Parse(time.RFC3339, args.PublishAt)
		if err != nil {
			return errorResult(errors.NewInvalidRequest("publish_at must be RFC 3339")), nil
		}
	}

	result, err := ops.Schedule(h.db, h.cfg, ops.ScheduleInput{
		DraftID:   args.ID,
		PublishAt: publishAt,
		KeepDraft: args.KeepDraft,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRunDue handles the run_due tool.
func (h *Handlers) HandleRunDue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.RunDue(ctx, h.db, h.cfg, ops.RunDueInput{})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRetry handles the retry tool.
func (h *Handlers) HandleRetry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Retry(h.db, args.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCancel handles the cancel tool.
func (h *Handlers) HandleCancel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Cancel(h.db, args.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleQueueList handles the queue_list tool.
func (h *Handlers) HandleQueueList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListQueue(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePublishedList handles the published_list tool.
func (h *Handlers) HandlePublishedList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListPublished(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivity handles the activity tool.
func (h *Handlers) HandleActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListActivity(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSettingsGet handles the settings_get tool.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRuleSet handles the rule_set tool.
func (h *Handlers) HandleRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[RuleSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SetRule(h.db, ops.SetRuleInput{RuleID: args.RuleID, Enabled: args.Enabled})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleWhitelistSet handles the whitelist_set tool.
func (h *Handlers) HandleWhitelistSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[WhitelistSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SetWhitelist(h.db, ops.SetWhitelistInput{Terms: args.Terms})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the export tool.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Export(h.db, h.cfg, ops.ExportInput{Path: args.Path, BaseDir: h.baseDir})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the import tool.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Import(h.db, ops.ImportInput{Path: args.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error to a structured MCP error payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if quillErr, ok := err.(*errors.QuillError); ok {
		errorObj := map[string]any{
			"code":    quillErr.Code,
			"message": quillErr.Message,
			"status":  quillErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if quillErr.Code != errors.ErrInternal && quillErr.Details != nil {
			errorObj["details"] = quillErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult wraps a successful result as JSON content.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
