package ops

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/quillpad/quill/internal/config"
	"github.com/quillpad/quill/internal/db"
	"github.com/quillpad/quill/internal/errors"
	"github.com/quillpad/quill/internal/lint"
)

// RuleSetting is one rule with its effective state.
type RuleSetting struct {
	lint.Rule
	Enabled bool `json:"enabled"`
}

// GetSettingsOutput contains the result of the GetSettings operation.
type GetSettingsOutput struct {
	Rules     []RuleSetting `json:"rules"`
	Whitelist []string      `json:"whitelist"`
}

// GetSettings returns every rule with its effective state and the
// effective whitelist.
func GetSettings(database *sql.DB, cfg *config.Config) (*GetSettingsOutput, error) {
	state, err := effectiveRuleState(database, cfg)
	if err != nil {
		return nil, err
	}
	whitelist, err := effectiveWhitelist(database, cfg)
	if err != nil {
		return nil, err
	}

	out := &GetSettingsOutput{Rules: []RuleSetting{}, Whitelist: whitelist}
	for _, r := range lint.Catalog() {
		out.Rules = append(out.Rules, RuleSetting{Rule: r, Enabled: state[r.ID]})
	}
	return out, nil
}

// SetRuleInput contains parameters for the SetRule operation.
type SetRuleInput struct {
	RuleID  string
	Enabled bool
}

// SetRule stores a per-rule enabled override.
func SetRule(database *sql.DB, input SetRuleInput) (*GetSettingsOutput, error) {
	if lint.RuleByID(input.RuleID) == nil {
		return nil, errors.NewInvalidRequest("unknown rule: " + input.RuleID)
	}

	stored, err := db.GetSetting(database, settingRuleState)
	if err != nil {
		return nil, err
	}
	overrides := map[string]bool{}
	if stored != "" {
		if err := json.Unmarshal([]byte(stored), &overrides); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	overrides[input.RuleID] = input.Enabled

	data, err := json.Marshal(overrides)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.SetSetting(database, settingRuleState, string(data)); err != nil {
		return nil, err
	}

	return GetSettings(database, nil)
}

// SetWhitelistInput contains parameters for the SetWhitelist operation.
type SetWhitelistInput struct {
	// Terms replaces the stored user whitelist. The built-in terms are
	// always kept on top of these.
	Terms []string
}

// SetWhitelist replaces the stored user whitelist terms.
func SetWhitelist(database *sql.DB, input SetWhitelistInput) (*GetSettingsOutput, error) {
	terms := lint.CleanTerms(input.Terms)
	if err := db.SetSetting(database, settingWhitelist, strings.Join(terms, "\n")); err != nil {
		return nil, err
	}
	return GetSettings(database, nil)
}
