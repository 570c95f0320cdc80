package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// CharLimit is the weighted character budget per post.
	CharLimit int `json:"char_limit"`

	// MaxAttempts is the automatic publish attempt budget per queue item.
	MaxAttempts int `json:"max_attempts"`

	// PublishWebhook, when set, sends real publish requests to this URL
	// instead of using the built-in simulator.
	PublishWebhook string `json:"publish_webhook,omitempty"`

	// PublishToken is sent as a bearer token with webhook requests.
	PublishToken string `json:"publish_token,omitempty"`

	// WhitelistTerms are added on top of the built-in lint whitelist.
	WhitelistTerms []string `json:"whitelist_terms,omitempty"`

	// DisabledRules lists lint rule IDs to turn off regardless of their
	// default or stored state.
	DisabledRules []string `json:"disabled_rules,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are ignored.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CharLimit:   25000,
		MaxAttempts: 3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.quill.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo loads configuration from both global (~/.quill) and repo
// (.quill) directories. Repo config is found by walking upward from
// startDir to the nearest .quill/config.json and takes precedence for
// scalar values; arrays are merged and deduplicated. Either or both
// configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .quill/config.json. Returns the path if found, or empty string.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".quill", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.CharLimit = overlay.CharLimit
	if result.CharLimit == 0 {
		result.CharLimit = base.CharLimit
	}

	result.MaxAttempts = overlay.MaxAttempts
	if result.MaxAttempts == 0 {
		result.MaxAttempts = base.MaxAttempts
	}

	result.PublishWebhook = overlay.PublishWebhook
	if result.PublishWebhook == "" {
		result.PublishWebhook = base.PublishWebhook
	}

	result.PublishToken = overlay.PublishToken
	if result.PublishToken == "" {
		result.PublishToken = base.PublishToken
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.WhitelistTerms = mergeStringSlice(base.WhitelistTerms, overlay.WhitelistTerms)
	result.DisabledRules = mergeStringSlice(base.DisabledRules, overlay.DisabledRules)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
