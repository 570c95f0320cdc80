package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/draft"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "quill",
		Usage:   "Thread drafting and publish queue",
		Version: Version,
		Commands: []*cli.Command{
			draftCmd(db, cfg),
			lintCmd(db, cfg),
			fixCmd(db, cfg),
			countCmd(db, cfg),
			composeCmd(db),
			scheduleCmd(db, cfg),
			runCmd(db, cfg),
			retryCmd(db),
			cancelCmd(db),
			queueCmd(db),
			publishedCmd(db),
			activityCmd(db),
			settingsCmd(db, cfg),
			ruleCmd(db),
			whitelistCmd(db),
			exportCmd(db, cfg, baseDir),
			importCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// draftCmd groups the draft lifecycle subcommands.
func draftCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Create, inspect, and delete drafts",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a draft (reads post text from stdin, posts separated by --- lines)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Draft title"},
				},
				Action: func(c *cli.Context) error {
					if !stdinHasData() {
						return outputError(errors.NewInvalidRequest("post text must be piped via stdin"))
					}
					text, err := readStdin()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					output, err := ops.CreateDraft(db, cfg, ops.CreateDraftInput{
						Title: c.String("title"),
						Posts: parsePosts(text),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a draft (optionally reads replacement posts from stdin)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateDraftInput{ID: c.Args().First()}
					if c.IsSet("title") {
						title := c.String("title")
						input.Title = &title
					}
					if stdinHasData() {
						text, err := readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
						if text != "" {
							input.Posts = parsePosts(text)
						}
					}
					output, err := ops.UpdateDraft(db, cfg, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "get",
				Usage:     "Get a draft by ID",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.GetDraft(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List drafts",
				Action: func(c *cli.Context) error {
					output, err := ops.ListDrafts(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a draft",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteDraft(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// lintCmd creates the lint command.
func lintCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Lint a draft by ID, or text piped via stdin",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			input, err := textOrDraftInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Lint(db, cfg, ops.LintInput{DraftID: input.DraftID, Text: input.Text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// fixCmd creates the fix command.
func fixCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Apply lint autofixes to a draft by ID, or text piped via stdin",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rule", Aliases: []string{"r"}, Usage: "Fix only this rule (e.g. R001)"},
		},
		Action: func(c *cli.Context) error {
			base, err := textOrDraftInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Fix(db, cfg, ops.FixInput{
				DraftID: base.DraftID,
				Text:    base.Text,
				RuleID:  c.String("rule"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// countCmd creates the count command.
func countCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Measure weighted character counts for a draft or piped text",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			input, err := textOrDraftInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Count(db, cfg, ops.CountInput{DraftID: input.DraftID, Text: input.Text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// composeCmd creates the compose command.
func composeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "Render a draft in a target format",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "plain", Usage: "Output format: plain|tweet|markdown|rich|html"},
			&cli.BoolFlag{Name: "styled", Usage: "Map bold/italic to Unicode styled characters (tweet format)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Compose(db, ops.ComposeInput{
				DraftID: c.Args().First(),
				Format:  ops.ComposeFormat(c.String("format")),
				Styled:  c.Bool("styled"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// scheduleCmd creates the schedule command.
func scheduleCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "schedule",
		Usage:     "Snapshot a draft into the publish queue",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: "Publish time (RFC 3339, default: now)"},
			&cli.BoolFlag{Name: "keep-draft", Usage: "Keep the draft after scheduling"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ScheduleInput{
				DraftID:   c.Args().First(),
				KeepDraft: c.Bool("keep-draft"),
			}
			if at := c.String("at"); at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return outputError(errors.NewInvalidRequest("invalid publish time: " + at))
				}
				input.PublishAt = ts
			}
			output, err := ops.Schedule(db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// runCmd creates the run command.
func runCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Attempt every due queue item once",
		Action: func(c *cli.Context) error {
			output, err := ops.RunDue(context.Background(), db, cfg, ops.RunDueInput{})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// retryCmd creates the retry command.
func retryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "retry",
		Usage:     "Reset a failed queue item for immediate retry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Retry(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cancelCmd creates the cancel command.
func cancelCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Remove a queue item without publishing",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Cancel(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// queueCmd creates the queue command.
func queueCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "List queue items in due order",
		Action: func(c *cli.Context) error {
			output, err := ops.ListQueue(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// publishedCmd creates the published command.
func publishedCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "published",
		Usage: "List published items, newest first",
		Action: func(c *cli.Context) error {
			output, err := ops.ListPublished(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// activityCmd creates the activity command.
func activityCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Show the activity log, newest first",
		Action: func(c *cli.Context) error {
			output, err := ops.ListActivity(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// settingsCmd creates the settings command.
func settingsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show effective lint rule state and whitelist",
		Action: func(c *cli.Context) error {
			output, err := ops.GetSettings(db, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// ruleCmd creates the rule command.
func ruleCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rule",
		Usage:     "Enable or disable a lint rule",
		ArgsUsage: "<rule-id> <on|off>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("usage: quill rule <rule-id> <on|off>"))
			}
			enabled, err := parseOnOff(c.Args().Get(1))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			output, err := ops.SetRule(db, ops.SetRuleInput{
				RuleID:  c.Args().First(),
				Enabled: enabled,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// whitelistCmd creates the whitelist command.
func whitelistCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "whitelist",
		Usage:     "Replace the user whitelist terms",
		ArgsUsage: "[term ...]",
		Action: func(c *cli.Context) error {
			terms := c.Args().Slice()
			if len(terms) == 0 && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				terms = strings.Split(text, "\n")
			}
			output, err := ops.SetWhitelist(db, ops.SetWhitelistInput{Terms: terms})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the workspace to a JSON snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.quill/exports/quill-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(db, cfg, ops.ExportInput{
				Path:    c.String("path"),
				BaseDir: baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the workspace with a JSON snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Snapshot file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(db, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// textTarget carries the shared id-or-text addressing of lint, fix, and
// count: a positional draft ID, or raw text piped via stdin.
type textTarget struct {
	DraftID string
	Text    string
}

// textOrDraftInput resolves the command target from the positional ID
// argument or piped stdin text.
func textOrDraftInput(c *cli.Context) (textTarget, error) {
	if c.NArg() > 0 {
		return textTarget{DraftID: c.Args().First()}, nil
	}
	if !stdinHasData() {
		return textTarget{}, errors.NewInvalidRequest("pass a draft ID or pipe text via stdin")
	}
	text, err := readStdin()
	if err != nil {
		return textTarget{}, errors.NewInternal(err)
	}
	return textTarget{Text: text}, nil
}

// parsePosts splits stdin text into posts on lines containing only "---".
func parsePosts(text string) []draft.Post {
	var posts []draft.Post
	var current []string
	flush := func() {
		posts = append(posts, draft.Post{Text: strings.TrimSpace(strings.Join(current, "\n"))})
		current = nil
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return posts
}

// parseOnOff parses an on/off toggle argument.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "enable", "enabled":
		return true, nil
	case "off", "false", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if quillErr, ok := err.(*errors.QuillError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", quillErr.Code, quillErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
