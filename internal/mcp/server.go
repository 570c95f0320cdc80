package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quillpad/quill/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"draft_create": {
		def:     draftCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftCreate },
	},
	"draft_update": {
		def:     draftUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftUpdate },
	},
	"draft_get": {
		def:     draftGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftGet },
	},
	"draft_list": {
		def:     draftListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftList },
	},
	"draft_delete": {
		def:     draftDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftDelete },
	},
	"lint": {
		def:     lintToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLint },
	},
	"fix": {
		def:     fixToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFix },
	},
	"count": {
		def:     countToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCount },
	},
	"compose": {
		def:     composeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompose },
	},
	"schedule": {
		def:     scheduleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSchedule },
	},
	"run_due": {
		def:     runDueToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRunDue },
	},
	"retry": {
		def:     retryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRetry },
	},
	"cancel": {
		def:     cancelToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCancel },
	},
	"queue_list": {
		def:     queueListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleQueueList },
	},
	"published_list": {
		def:     publishedListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePublishedList },
	},
	"activity": {
		def:     activityToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivity },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"rule_set": {
		def:     ruleSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleSet },
	},
	"whitelist_set": {
		def:     whitelistSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWhitelistSet },
	},
	"export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Quill tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"quill",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, baseDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, baseDir, version string) error {
	s := NewServer(db, cfg, baseDir, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
