// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the keywordschat client.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// Version of the config schema, for future migrations.
	Version string `toml:"version" json:"version"`

	// API configuration
	API APIConfig `toml:"api" json:"api"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// History configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Archive configuration
	Archive ArchiveConfig `toml:"archive" json:"archive"`
}

// APIConfig contains backend connection configuration.
type APIConfig struct {
	// BaseURL is the keywordschat API endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSec is the per-request timeout for non-streaming calls.
	TimeoutSec int `toml:"timeout_sec" json:"timeout_sec"`
	// MaxRetries is the retry count for transient errors.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RateLimitPerMin caps outbound requests per minute (0 = no limit).
	RateLimitPerMin int `toml:"rate_limit_per_min" json:"rate_limit_per_min"`
	// Key is the API token. Normally empty here: the token lives in the
	// encrypted keystore, and this field only carries a KWC_API_KEY
	// process override. It is never written back to disk.
	Key string `toml:"-" json:"-"`
}

// UIConfig contains presentation configuration.
type UIConfig struct {
	// Theme is "auto", "dark", or "light".
	Theme string `toml:"theme" json:"theme"`
	// PanelOpenOnResult opens the data panel when a result arrives.
	PanelOpenOnResult bool `toml:"panel_open_on_result" json:"panel_open_on_result"`
	// MaxTableRows caps rows rendered per table page.
	MaxTableRows int `toml:"max_table_rows" json:"max_table_rows"`
}

// HistoryConfig contains conversation persistence configuration.
type HistoryConfig struct {
	// Dir is the conversations directory. Empty = ~/.keywordschat/conversations.
	Dir string `toml:"dir" json:"dir"`
	// MaxConversations limits stored conversations (0 = unlimited).
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// ArchiveConfig contains result archive configuration.
type ArchiveConfig struct {
	// Enabled turns the SQLite result archive on.
	Enabled bool `toml:"enabled" json:"enabled"`
	// DBPath is the archive database path. Empty = ~/.keywordschat/archive.db.
	DBPath string `toml:"db_path" json:"db_path"`
	// MaxEntries prunes the oldest archived results past this count (0 = unlimited).
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:         "https://api.keywordschat.com/v1",
			TimeoutSec:      60,
			MaxRetries:      3,
			RateLimitPerMin: 60,
		},
		UI: UIConfig{
			Theme:             "auto",
			PanelOpenOnResult: true,
			MaxTableRows:      200,
		},
		History: HistoryConfig{
			MaxConversations: 100,
		},
		Archive: ArchiveConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the client configuration directory (~/.keywordschat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".keywordschat"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: defaults, then the first config file found
// (TOML preferred over JSON), then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadTOML(cfg, path); err != nil {
				return nil, err
			}
			return finish(cfg)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadJSON(cfg, path); err != nil {
				return nil, err
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath reads the configuration from an explicit file path,
// dispatching on the file extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = loadTOML(cfg, path)
	case ".json":
		err = loadJSON(cfg, path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

// finish applies env overrides and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTOML merges a TOML file into cfg.
func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadJSON merges a JSON file into cfg.
func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the TOML config path atomically.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML to the given path.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies KWC_* environment variables over the loaded
// configuration. Environment always wins over file values.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("KWC_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if key := os.Getenv("KWC_API_KEY"); key != "" {
		c.API.Key = key
	}
	if theme := os.Getenv("KWC_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if archive := os.Getenv("KWC_ARCHIVE"); archive != "" {
		c.Archive.Enabled = archive != "0" && !strings.EqualFold(archive, "false")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ErrInvalidConfig wraps all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{"api.base_url", "must not be empty"}.Error())
	} else if parsed, err := url.Parse(c.API.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, ValidationError{"api.base_url", "must be an http(s) URL"}.Error())
	}

	if c.API.TimeoutSec <= 0 {
		errs = append(errs, ValidationError{"api.timeout_sec", "must be positive"}.Error())
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, ValidationError{"api.max_retries", "must not be negative"}.Error())
	}
	if c.API.RateLimitPerMin < 0 {
		errs = append(errs, ValidationError{"api.rate_limit_per_min", "must not be negative"}.Error())
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", `must be "auto", "dark", or "light"`}.Error())
	}
	if c.UI.MaxTableRows <= 0 {
		errs = append(errs, ValidationError{"ui.max_table_rows", "must be positive"}.Error())
	}

	if c.History.MaxConversations < 0 {
		errs = append(errs, ValidationError{"history.max_conversations", "must not be negative"}.Error())
	}
	if c.Archive.MaxEntries < 0 {
		errs = append(errs, ValidationError{"archive.max_entries", "must not be negative"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// =============================================================================
// RESOLVED PATHS
// =============================================================================

// HistoryDir resolves the conversations directory.
func (c *Config) HistoryDir() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations"), nil
}

// ArchivePath resolves the result archive database path.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.DBPath != "" {
		return c.Archive.DBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}
