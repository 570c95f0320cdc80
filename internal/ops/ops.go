// Package ops implements the application operations shared by the CLI
// and the MCP server. Each operation takes an Input struct, talks to
// the database, and returns an Output struct or a structured error.
package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/lint"
)

// Settings keys in the settings table.
const (
	settingRuleState = "rule_state" // JSON object: rule ID -> enabled
	settingWhitelist = "whitelist"  // newline-separated terms
)

func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// effectiveRuleState merges rule defaults, stored overrides, and
// config-disabled rules, in that order.
func effectiveRuleState(database *sql.DB, cfg *config.Config) (map[string]bool, error) {
	state := lint.DefaultState()

	stored, err := db.GetSetting(database, settingRuleState)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		overrides := map[string]bool{}
		if err := json.Unmarshal([]byte(stored), &overrides); err != nil {
			return nil, errors.NewInternal(err)
		}
		for id, enabled := range overrides {
			if lint.RuleByID(id) != nil {
				state[id] = enabled
			}
		}
	}

	if cfg != nil {
		for _, id := range cfg.DisabledRules {
			if lint.RuleByID(id) != nil {
				state[id] = false
			}
		}
	}

	return state, nil
}

// effectiveWhitelist merges the built-in whitelist, stored user terms,
// and config terms.
func effectiveWhitelist(database *sql.DB, cfg *config.Config) ([]string, error) {
	terms := lint.BaseWhitelist()

	stored, err := db.GetSetting(database, settingWhitelist)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		terms = append(terms, strings.Split(stored, "\n")...)
	}

	if cfg != nil {
		terms = append(terms, cfg.WhitelistTerms...)
	}

	return lint.CleanTerms(terms), nil
}
